package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template using the coffeescript helpers",
		Long: "Render a Go text/template file to stdout. The template may call\n" +
			"{{ coffeescript \"path.coffee\" }} for an artifact URL and\n" +
			"{{ inlinecoffeescript \"source\" }} for compiled JavaScript.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(cmd)
			if err != nil {
				return err
			}
			return c.app.Render(cmd.Context(), opts, args[0])
		},
	}
}

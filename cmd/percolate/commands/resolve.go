package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [sources...]",
		Short: "Compile sources when needed and print their artifact paths",
		Long: "Compile each CoffeeScript source unless an artifact for its current content " +
			"and modification time already exists in the cache directory, then print one " +
			"artifact path per line, relative to the output root.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}

			opts, err := options(cmd)
			if err != nil {
				return err
			}
			return c.app.Resolve(cmd.Context(), opts, args)
		},
	}
}

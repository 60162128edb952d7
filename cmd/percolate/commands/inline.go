package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newInlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inline [file|-]",
		Short: "Compile a CoffeeScript snippet and print the JavaScript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options(cmd)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return zerr.With(zerr.Wrap(err, "failed to open inline source"), "path", args[0])
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			return c.app.Inline(cmd.Context(), opts, in)
		},
	}
}

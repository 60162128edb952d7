// Package commands implements the CLI commands for percolate.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/percolate/internal/adapters/config"
	"go.trai.ch/percolate/internal/app"
	"go.trai.ch/percolate/internal/build"
	"go.trai.ch/percolate/internal/core/domain"
)

// CLI represents the command line interface for percolate.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Resolve(ctx context.Context, opts app.Options, sources []string) error
	Inline(ctx context.Context, opts app.Options, r io.Reader) error
	Render(ctx context.Context, opts app.Options, templatePath string) error
	Watch(ctx context.Context, opts app.Options) error
	Clean(ctx context.Context, opts app.Options) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "percolate",
		Short:         "A compiled artifact cache for CoffeeScript sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to the configuration file (default "+domain.ConfigFileName+")")
	flags.String("source-root", "", "Directory source paths are resolved against")
	flags.String("output-root", "", "Directory the artifact cache is written to")
	flags.String("delay", "", "Minimum time between modification time checks, e.g. 10s or 2.5")
	flags.String("log-format", "", "Log format: auto, pretty, or json")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newInlineCmd())
	rootCmd.AddCommand(c.newRenderCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// SetInput sets the input stream for the root command. Used for testing.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}

// options collects the global flags into app.Options.
func options(cmd *cobra.Command) (app.Options, error) {
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	sourceRoot, _ := flags.GetString("source-root")
	outputRoot, _ := flags.GetString("output-root")
	rawDelay, _ := flags.GetString("delay")
	logFormat, _ := flags.GetString("log-format")

	opts := app.Options{
		ConfigPath: configPath,
		SourceRoot: sourceRoot,
		OutputRoot: outputRoot,
		LogFormat:  domain.LogFormat(logFormat),
	}

	if rawDelay != "" {
		delay, err := config.ParseDelay(rawDelay)
		if err != nil {
			return app.Options{}, err
		}
		opts.Delay = &delay
	}

	return opts, nil
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orrery/internal/config"
	"github.com/matzehuels/orrery/pkg/buildinfo"
)

// RootCommand builds the orrery command tree.
//
// Before any subcommand runs, configuration is loaded from --config (or a
// .orrery.toml in the working or home directory) and ORRERY_* environment
// variables. --verbose, or verbose = true in the config, switches the logger
// to debug level and reports pipeline and cache events.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Orrery lays out hierarchies as solar systems",
		Long: `Orrery turns a parent-linked hierarchy into a solar-system layout: every
node becomes a body on a ring at its depth, in an angular slice sized by its
subtree, circling at a speed that falls off with distance from the center.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: .orrery.toml in . or $HOME)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inferCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) setup(cmd *cobra.Command) error {
	v := config.New(c.configPath)
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	c.Config = cfg

	if c.verbose || cfg.Verbose {
		c.SetLogLevel(LogDebug)
		registerLogHooks(c.Logger)
	}
	if file := config.File(v); file != "" {
		c.Logger.Debug("loaded config", "file", file)
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// Execute runs the command tree with args taken from os.Args.
func (c *CLI) Execute(ctx context.Context) error {
	return c.RootCommand().ExecuteContext(ctx)
}

package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"filesorter-ai/internal/app"
	"filesorter-ai/internal/config"
)

// commandContext lazily builds the application for commands that need it.
type commandContext struct {
	jsonOutput bool

	once   sync.Once
	app    *app.App
	appErr error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureApp(ctx context.Context) (*app.App, error) {
	c.once.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.appErr = err
			return
		}
		slog.SetDefault(app.NewLogger(cfg))
		c.app, c.appErr = app.New(ctx, cfg)
	})
	return c.app, c.appErr
}

func (c *commandContext) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}

func newRootCommand(cc *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "filesorter",
		Short:         "Categorize files with a language model and keep the taxonomy consistent",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&cc.jsonOutput, "json", false, "Write JSON instead of a table")

	rootCmd.AddCommand(newCategorizeCommand(cc))
	rootCmd.AddCommand(newConsistencyCommand(cc))
	rootCmd.AddCommand(newTaxonomyCommand(cc))
	rootCmd.AddCommand(newFilesCommand(cc))
	rootCmd.AddCommand(newCleanupCommand(cc))
	rootCmd.AddCommand(newReportCommand(cc))

	return rootCmd
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasksage/tasksage"
	"github.com/tasksage/tasksage/pkg/core"
)

var (
	verbose bool
	dataDir string
	owner   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tasksage",
	Short: "A local-first task and note manager with live derived views",
	Long: `TaskSage stores tasks and notes as Markdown files with frontmatter
and derives all dashboard state (stats, filters, recent items) locally.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", ".", "Data directory")
	rootCmd.PersistentFlags().StringVar(&owner, "owner", "local", "Owner identity for records")
}

func openApp() *tasksage.App {
	app, err := tasksage.New(dataDir, tasksage.WithLogger(slog.Default()))
	if err != nil {
		fatal("Error initializing tasksage", err)
	}
	return app
}

// fetch performs a one-shot read: subscribe, take the initial snapshot,
// cancel.
func fetch(ctx context.Context, store core.Store, collection string) []core.Record {
	sub, err := store.Subscribe(ctx, core.Query{Collection: collection, OwnerID: owner})
	if err != nil {
		fatal("Error reading "+collection, err)
	}
	defer sub.Cancel()

	select {
	case snap := <-sub.C:
		return snap.Records
	case <-ctx.Done():
		fatal("Error reading "+collection, ctx.Err())
	}
	return nil
}

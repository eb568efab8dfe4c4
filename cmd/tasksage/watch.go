package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tasksage/tasksage"
	"github.com/tasksage/tasksage/pkg/engine"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the live derived view until interrupted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng := tasksage.NewEngine(app.Store, engine.WithLogger(slog.Default()))
		defer eng.Close()

		if err := eng.Bind(ctx, owner); err != nil {
			fatal("Error binding view", err)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case view := <-eng.Updates():
				s := view.Stats
				fmt.Printf("tasks=%d completed=%d pending=%d overdue=%d notes=%d rate=%d%%\n",
					s.TotalTasks, s.CompletedTasks, s.PendingTasks, s.OverdueTasks,
					s.TotalNotes, s.CompletionRate)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

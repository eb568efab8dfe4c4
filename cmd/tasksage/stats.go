package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasksage/tasksage/pkg/core"
	"github.com/tasksage/tasksage/pkg/engine"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show derived productivity stats",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		ctx := context.Background()
		tasks := core.TasksFromRecords(fetch(ctx, app.Store, core.CollectionTasks))
		notes := core.NotesFromRecords(fetch(ctx, app.Store, core.CollectionNotes))

		stats := engine.Stats{}.
			MergeTasks(engine.ReduceTasks(tasks, time.Now())).
			MergeNotes(engine.ReduceNotes(notes))

		if statsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(stats); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		fmt.Printf("%s, %s.\n\n", core.Greeting(time.Now()), owner)
		fmt.Printf("Tasks:      %d total, %d completed, %d pending, %d overdue\n",
			stats.TotalTasks, stats.CompletedTasks, stats.PendingTasks, stats.OverdueTasks)
		fmt.Printf("Notes:      %d\n", stats.TotalNotes)
		fmt.Printf("Completion: %d%%\n", stats.CompletionRate)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
}

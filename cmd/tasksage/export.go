package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasksage/tasksage/pkg/core"
	"github.com/tasksage/tasksage/pkg/engine"
	"github.com/tasksage/tasksage/pkg/export"
)

var (
	exportOut      string
	exportStatus   string
	exportPriority string
	exportSearch   string
	exportSort     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks or notes to files",
}

var exportTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Export the filtered task list as plain text",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		tasks := core.TasksFromRecords(fetch(context.Background(), app.Store, core.CollectionTasks))
		q := engine.TaskQuery{
			Search:   exportSearch,
			Status:   engine.Status(exportStatus),
			Priority: core.Priority(exportPriority),
			Sort:     engine.SortKey(exportSort),
		}
		tasks = engine.FilterTasks(tasks, q, time.Now())
		tasks = engine.SortTasks(tasks, q.Sort)
		text := export.Tasks(tasks)

		if exportOut == "" || exportOut == "-" {
			fmt.Print(text)
			return
		}
		if err := os.WriteFile(exportOut, []byte(text), 0o644); err != nil {
			fatal("Error writing export", err)
		}
	},
}

var exportNotesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Export each note as a Markdown file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		notes := core.NotesFromRecords(fetch(context.Background(), app.Store, core.CollectionNotes))

		if exportOut == "" || exportOut == "-" {
			fmt.Print(export.AllNotes(notes))
			return
		}
		if err := os.MkdirAll(exportOut, 0o755); err != nil {
			fatal("Error creating export directory", err)
		}
		for _, n := range notes {
			path := filepath.Join(exportOut, export.NoteFilename(n.Title))
			if err := os.WriteFile(path, []byte(export.Note(n)), 0o644); err != nil {
				fatal("Error writing export", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportTasksCmd, exportNotesCmd)
	exportCmd.PersistentFlags().StringVarP(&exportOut, "out", "o", "", "Output file or directory (default stdout)")

	exportTasksCmd.Flags().StringVar(&exportStatus, "status", "all", "Filter by status (all|completed|pending|overdue)")
	exportTasksCmd.Flags().StringVar(&exportPriority, "priority", "", "Filter by priority (low|medium|high)")
	exportTasksCmd.Flags().StringVar(&exportSearch, "search", "", "Search term")
	exportTasksCmd.Flags().StringVar(&exportSort, "sort", "created", "Sort key (created|dueDate|priority|title)")
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasksage/tasksage/pkg/core"
	"github.com/tasksage/tasksage/pkg/engine"
	"github.com/tasksage/tasksage/pkg/forms"
)

var (
	noteContent  string
	noteCategory string
	noteTags     string
	noteTemplate string

	noteSearch string
	noteJSON   bool
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a note; content comes from --content or stdin",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		form := forms.NoteForm{
			Title:    args[0],
			Content:  noteContent,
			Category: noteCategory,
			Tags:     noteTags,
		}
		if noteTemplate != "" {
			if !form.ApplyTemplate(noteTemplate, time.Now()) {
				fatal("Unknown template", fmt.Errorf("%q", noteTemplate))
			}
		}
		if form.Content == "" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Error reading stdin", err)
			}
			form.Content = string(data)
		}

		app := openApp()
		defer app.Close()

		if err := form.Validate(); err != nil {
			fatal("Invalid note", err)
		}
		id, err := app.Service.CreateNote(context.Background(), owner, form.Draft())
		if err != nil {
			fatal("Error creating note", err)
		}
		fmt.Println(id)
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		ctx := context.Background()
		notes := core.NotesFromRecords(fetch(ctx, app.Store, core.CollectionNotes))
		notes = engine.FilterNotes(notes, engine.NoteQuery{Search: noteSearch})
		notes = engine.RecentNotes(notes, len(notes))

		if noteJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(notes); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, n := range notes {
			fmt.Printf("%s  %s (%d words)\n", n.ID, n.Title, n.WordCount)
		}
	},
}

var noteRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		if err := app.Service.DeleteNote(context.Background(), args[0]); err != nil {
			fatal("Error deleting note", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteAddCmd, noteListCmd, noteRmCmd)

	noteAddCmd.Flags().StringVar(&noteContent, "content", "", "Note content")
	noteAddCmd.Flags().StringVar(&noteCategory, "category", "", "Note category")
	noteAddCmd.Flags().StringVar(&noteTags, "tags", "", "Comma-separated tags")
	noteAddCmd.Flags().StringVar(&noteTemplate, "template", "", "Start from a template (meeting|project|daily|research)")

	noteListCmd.Flags().StringVar(&noteSearch, "search", "", "Search term")
	noteListCmd.Flags().BoolVar(&noteJSON, "json", false, "Output in JSON format")
}

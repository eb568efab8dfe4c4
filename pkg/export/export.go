// Package export renders tasks and notes into the downloadable formats:
// Markdown for notes, plain text for task lists.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/tasksage/tasksage/pkg/core"
)

const separatorWidth = 50

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Format("2006-01-02 15:04")
}

// lastTouched prefers updatedAt, falling back to createdAt.
func lastTouched(created, updated time.Time) time.Time {
	if !updated.IsZero() {
		return updated
	}
	return created
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return "None"
	}
	return strings.Join(tags, ", ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Note renders a single note as Markdown: heading, metadata block, a
// horizontal rule, then the body.
func Note(n core.Note) string {
	return fmt.Sprintf(
		"# %s\n\n**Category:** %s\n**Tags:** %s\n**Date:** %s\n**Word Count:** %d\n\n---\n\n%s",
		n.Title,
		orDefault(n.Category, "Uncategorized"),
		joinTags(n.Tags),
		formatTimestamp(lastTouched(n.CreatedAt, n.UpdatedAt)),
		n.WordCount,
		n.Content,
	)
}

// AllNotes concatenates every note, each terminated by a horizontal rule.
func AllNotes(notes []core.Note) string {
	var b strings.Builder
	for _, n := range notes {
		fmt.Fprintf(&b,
			"# %s\n\n**Category:** %s\n**Tags:** %s\n**Date:** %s\n**Word Count:** %d\n\n%s\n\n---\n\n\n",
			n.Title,
			orDefault(n.Category, "Uncategorized"),
			joinTags(n.Tags),
			formatTimestamp(lastTouched(n.CreatedAt, n.UpdatedAt)),
			n.WordCount,
			n.Content,
		)
	}
	return b.String()
}

// NoteFilename derives a safe download filename from the note title:
// every non-alphanumeric run becomes an underscore.
func NoteFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + ".md"
}

// Tasks renders a numbered plain-text task list with a fixed field order:
// status, priority, category, due date, tags, created date, description,
// then a 50-dash separator.
func Tasks(tasks []core.Task) string {
	var b strings.Builder
	for i, t := range tasks {
		status := "⏳ PENDING"
		if t.Completed {
			status = "✅ COMPLETED"
		}
		due := "No due date"
		if t.DueDate != nil {
			due = "Due: " + t.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(&b,
			"%d. %s\nStatus: %s\nPriority: %s\nCategory: %s\n%s\nTags: %s\nCreated: %s\nDescription:\n%s\n%s\n\n",
			i+1,
			t.Title,
			status,
			strings.ToUpper(string(t.Priority)),
			orDefault(t.Category, "Uncategorized"),
			due,
			joinTags(t.Tags),
			formatTimestamp(lastTouched(t.CreatedAt, t.UpdatedAt)),
			orDefault(t.Description, "No description"),
			strings.Repeat("-", separatorWidth),
		)
	}
	return b.String()
}

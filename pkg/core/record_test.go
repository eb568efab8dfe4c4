package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tasksage/tasksage/pkg/core"
)

func TestTaskFromRecord_Forgiving(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	task := core.TaskFromRecord(core.Record{
		ID: "t1",
		Fields: core.Fields{
			core.FieldOwnerID:   "owner-1",
			core.FieldTitle:     "Write report",
			core.FieldPriority:  "HIGH",
			core.FieldCompleted: true,
			core.FieldTags:      []any{"work", 42, "q1"},
			core.FieldCreatedAt: created.Format(time.RFC3339),
			core.FieldDueDate:   due,
		},
	})

	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, core.PriorityHigh, task.Priority)
	assert.True(t, task.Completed)
	assert.Equal(t, []string{"work", "q1"}, task.Tags, "non-string tags are dropped")
	assert.True(t, task.CreatedAt.Equal(created), "RFC3339 strings decode as timestamps")
	if assert.NotNil(t, task.DueDate) {
		assert.True(t, task.DueDate.Equal(due))
	}
}

func TestTaskFromRecord_Mistyped(t *testing.T) {
	task := core.TaskFromRecord(core.Record{
		ID: "t2",
		Fields: core.Fields{
			core.FieldTitle:     12345,
			core.FieldCompleted: "yes",
			core.FieldCreatedAt: "not-a-time",
		},
	})

	assert.Equal(t, "", task.Title)
	assert.False(t, task.Completed)
	assert.True(t, task.CreatedAt.IsZero())
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, core.PriorityMedium, task.Priority, "missing priority defaults to medium")
}

func TestNoteFromRecord(t *testing.T) {
	note := core.NoteFromRecord(core.Record{
		ID: "n1",
		Fields: core.Fields{
			core.FieldTitle:     "Minutes",
			core.FieldContent:   "who said what",
			core.FieldWordCount: float64(3),
			core.FieldTags:      []string{"meeting"},
		},
	})

	assert.Equal(t, "Minutes", note.Title)
	assert.Equal(t, 3, note.WordCount, "float counts from JSON decode coerce to int")
	assert.Equal(t, []string{"meeting"}, note.Tags)
}

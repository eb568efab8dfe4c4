package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tasksage/tasksage/pkg/core"
	"github.com/tasksage/tasksage/pkg/engine"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func task(mutate func(*core.Task)) core.Task {
	t := core.Task{Title: "t", Priority: core.PriorityMedium, CreatedAt: now}
	if mutate != nil {
		mutate(&t)
	}
	return t
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0, engine.CompletionRate(0, 0), "empty set is 0, not NaN")
	assert.Equal(t, 100, engine.CompletionRate(5, 5))
	assert.Equal(t, 50, engine.CompletionRate(1, 2))
	assert.Equal(t, 33, engine.CompletionRate(1, 3), "rounds to nearest integer")
	assert.Equal(t, 67, engine.CompletionRate(2, 3))
}

func TestIsOverdue(t *testing.T) {
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, engine.IsOverdue(task(func(x *core.Task) { x.DueDate = &past }), now))
	assert.False(t, engine.IsOverdue(task(func(x *core.Task) { x.DueDate = &future }), now))
	assert.False(t, engine.IsOverdue(task(nil), now), "no due date is never overdue")
	assert.False(t, engine.IsOverdue(task(func(x *core.Task) {
		x.DueDate = &past
		x.Completed = true
	}), now), "completed tasks are never overdue")
}

func TestReduceTasks(t *testing.T) {
	past := now.Add(-time.Hour)
	tasks := []core.Task{
		task(func(x *core.Task) { x.Completed = true }),
		task(func(x *core.Task) { x.DueDate = &past }),
		task(nil),
	}

	p := engine.ReduceTasks(tasks, now)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 2, p.Pending)
	assert.Equal(t, 1, p.Overdue)
	assert.Equal(t, p.Total, p.Completed+p.Pending)
}

func TestStats_PartialMerges(t *testing.T) {
	s := engine.Stats{}.
		MergeTasks(engine.TaskStats{Total: 4, Completed: 2, Pending: 2})

	assert.Equal(t, 50, s.CompletionRate)
	assert.Equal(t, 0, s.TotalNotes)

	// A note patch must not disturb task-owned fields.
	s = s.MergeNotes(engine.NoteStats{Total: 7})
	assert.Equal(t, 7, s.TotalNotes)
	assert.Equal(t, 4, s.TotalTasks)
	assert.Equal(t, 50, s.CompletionRate)

	// And vice versa.
	s = s.MergeTasks(engine.TaskStats{Total: 1, Completed: 1})
	assert.Equal(t, 7, s.TotalNotes)
	assert.Equal(t, 100, s.CompletionRate)
}

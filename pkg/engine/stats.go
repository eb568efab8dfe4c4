package engine

import (
	"math"
	"time"

	"github.com/tasksage/tasksage/pkg/core"
)

// Stats is the derived dashboard state. It is a value: reducers return
// partial patches and MergeTasks/MergeNotes produce a new value, so the two
// collection feeds can never clobber each other's fields.
type Stats struct {
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
	OverdueTasks   int
	TotalNotes     int
	CompletionRate int
}

// TaskStats is the partial patch owned by the tasks feed.
type TaskStats struct {
	Total     int
	Completed int
	Pending   int
	Overdue   int
}

// NoteStats is the partial patch owned by the notes feed.
type NoteStats struct {
	Total int
}

// CompletionRate returns round(100*completed/total), and 0 when total is 0.
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// IsOverdue reports whether a task is past its due date and still pending.
// Tasks without a due date are never overdue.
func IsOverdue(t core.Task, now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// ReduceTasks computes the task-owned stats patch from a snapshot.
func ReduceTasks(tasks []core.Task, now time.Time) TaskStats {
	var p TaskStats
	p.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			p.Completed++
		} else {
			p.Pending++
		}
		if IsOverdue(t, now) {
			p.Overdue++
		}
	}
	return p
}

// ReduceNotes computes the note-owned stats patch from a snapshot.
func ReduceNotes(notes []core.Note) NoteStats {
	return NoteStats{Total: len(notes)}
}

// MergeTasks applies a task patch, leaving note-owned fields untouched.
func (s Stats) MergeTasks(p TaskStats) Stats {
	s.TotalTasks = p.Total
	s.CompletedTasks = p.Completed
	s.PendingTasks = p.Pending
	s.OverdueTasks = p.Overdue
	s.CompletionRate = CompletionRate(p.Completed, p.Total)
	return s
}

// MergeNotes applies a note patch, leaving task-owned fields untouched.
func (s Stats) MergeNotes(p NoteStats) Stats {
	s.TotalNotes = p.Total
	return s
}

package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/tasksage/tasksage/pkg/core"
)

// Status filters tasks by completion state.
type Status string

const (
	StatusAll       Status = "all"
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusOverdue   Status = "overdue"
)

// SortKey selects the task ordering.
type SortKey string

const (
	SortCreated  SortKey = "created"
	SortDueDate  SortKey = "dueDate"
	SortPriority SortKey = "priority"
	SortTitle    SortKey = "title"
)

// TaskQuery is the active filter/sort/search configuration for the task view.
// Zero values pass everything and sort by recency.
type TaskQuery struct {
	Search   string
	Status   Status
	Priority core.Priority // empty means all
	Sort     SortKey
}

// NoteQuery is the active search configuration for the note view.
type NoteQuery struct {
	Search string
}

func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), term)
}

// MatchTask reports whether the task matches the search term: a
// case-insensitive substring match against title, description, category or
// any tag (logical OR). An empty term matches everything.
func MatchTask(t core.Task, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if containsFold(t.Title, term) || containsFold(t.Description, term) || containsFold(t.Category, term) {
		return true
	}
	for _, tag := range t.Tags {
		if containsFold(tag, term) {
			return true
		}
	}
	return false
}

// MatchNote is the note counterpart of MatchTask.
func MatchNote(n core.Note, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if containsFold(n.Title, term) || containsFold(n.Content, term) || containsFold(n.Category, term) {
		return true
	}
	for _, tag := range n.Tags {
		if containsFold(tag, term) {
			return true
		}
	}
	return false
}

func matchStatus(t core.Task, status Status, now time.Time) bool {
	switch status {
	case StatusCompleted:
		return t.Completed
	case StatusPending:
		return !t.Completed
	case StatusOverdue:
		return IsOverdue(t, now)
	default: // "" or StatusAll
		return true
	}
}

// FilterTasks applies search, status and priority filters in that order.
// The input slice is not modified.
func FilterTasks(tasks []core.Task, q TaskQuery, now time.Time) []core.Task {
	out := make([]core.Task, 0, len(tasks))
	for _, t := range tasks {
		if !MatchTask(t, q.Search) {
			continue
		}
		if !matchStatus(t, q.Status, now) {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterNotes applies the search term.
func FilterNotes(notes []core.Note, q NoteQuery) []core.Note {
	out := make([]core.Note, 0, len(notes))
	for _, n := range notes {
		if MatchNote(n, q.Search) {
			out = append(out, n)
		}
	}
	return out
}

// SortTasks returns a sorted copy. All orderings are stable, so records the
// comparator considers equal keep their input order.
//
//   - created: recency, newest first; a missing createdAt sorts oldest.
//   - dueDate: ascending; tasks without a due date sort after all dated ones.
//   - priority: high > medium > low.
//   - title: lexicographic ascending.
func SortTasks(tasks []core.Task, key SortKey) []core.Task {
	out := make([]core.Task, len(tasks))
	copy(out, tasks)

	switch key {
	case SortDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			if a == nil && b == nil {
				return false
			}
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() > out[j].Priority.Rank()
		})
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	default: // "" or SortCreated
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// RecentTasks returns the n most recently created tasks.
// The zero time sorts as the oldest possible value.
func RecentTasks(tasks []core.Task, n int) []core.Task {
	sorted := SortTasks(tasks, SortCreated)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// RecentNotes returns the n most recently created notes.
func RecentNotes(notes []core.Note, n int) []core.Note {
	out := make([]core.Note, len(notes))
	copy(out, notes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

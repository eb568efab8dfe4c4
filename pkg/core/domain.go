package core

import (
	"strings"
	"time"
)

// Collection names used by the Store.
const (
	CollectionTasks = "tasks"
	CollectionNotes = "notes"
	CollectionUsers = "users"
)

// Priority classifies the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank returns the numeric weight of a priority (high=3, medium=2, low=1).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// ParsePriority normalizes arbitrary input to a known priority.
// Unknown values default to medium.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Task is an immutable snapshot of a task record.
type Task struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Category    string
	Priority    Priority
	DueDate     *time.Time
	Tags        []string
	AssignedTo  string
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Note is an immutable snapshot of a note record.
type Note struct {
	ID            string
	OwnerID       string
	Title         string
	Content       string
	Category      string
	Tags          []string
	WordCount     int
	HasVoiceInput bool
	HasSummary    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// User is the authenticated identity that owns records.
type User struct {
	ID          string
	DisplayName string
	Email       string
}

// ShortName returns the best available display handle:
// display name, then the local part of the email, then "Guest".
func (u User) ShortName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	if u.Email != "" {
		return u.Email
	}
	return "Guest"
}

// Greeting returns the salutation for the given local time.
func Greeting(now time.Time) string {
	switch hour := now.Hour(); {
	case hour < 12:
		return "Good Morning"
	case hour < 17:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}

// WordCount counts whitespace-separated words, ignoring empty fragments.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Package forms holds the transient edit buffers behind the task and note
// editors: validation, tag normalization, templates and debounced auto-save.
// Forms never talk to the store directly; they produce drafts for the
// write-side service.
package forms

import (
	"strings"
	"time"

	"github.com/tasksage/tasksage/pkg/core"
)

// TaskForm is the edit buffer for creating or editing a task.
// EditID is non-empty while an existing record is being edited.
type TaskForm struct {
	Title       string
	Description string
	Category    string
	Priority    core.Priority
	DueDate     *time.Time
	Tags        string
	AssignedTo  string
	EditID      string
}

// NewTaskForm returns an empty form with the default priority.
func NewTaskForm() *TaskForm {
	return &TaskForm{Priority: core.PriorityMedium}
}

// Validate checks the required fields without touching the store.
func (f *TaskForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return &core.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return nil
}

// Draft converts the buffer into a write payload.
func (f *TaskForm) Draft() core.TaskDraft {
	return core.TaskDraft{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		Priority:    f.Priority,
		DueDate:     f.DueDate,
		Tags:        NormalizeTags(f.Tags),
		AssignedTo:  f.AssignedTo,
	}
}

// Load begins an edit session for an existing task.
func (f *TaskForm) Load(t core.Task) {
	f.Title = t.Title
	f.Description = t.Description
	f.Category = t.Category
	f.Priority = t.Priority
	f.DueDate = t.DueDate
	f.Tags = JoinTags(t.Tags)
	f.AssignedTo = t.AssignedTo
	f.EditID = t.ID
}

// ApplyTemplate prefills the form from a named template.
// Returns false for an unknown template name.
func (f *TaskForm) ApplyTemplate(name string) bool {
	tpl, ok := TaskTemplates[name]
	if !ok {
		return false
	}
	f.Title = tpl.Title
	f.Description = tpl.Description
	f.Category = tpl.Category
	f.Priority = tpl.Priority
	return true
}

// Reset clears the buffer after a successful save.
func (f *TaskForm) Reset() {
	*f = TaskForm{Priority: core.PriorityMedium}
}

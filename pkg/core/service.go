package core

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/introspection"
)

// TaskDraft carries the validated write payload for a task.
type TaskDraft struct {
	Title       string
	Description string
	Category    string
	Priority    Priority
	DueDate     *time.Time
	Tags        []string
	AssignedTo  string
}

// NoteDraft carries the validated write payload for a note.
type NoteDraft struct {
	Title         string
	Content       string
	Category      string
	Tags          []string
	HasVoiceInput bool
	HasSummary    bool
}

// Service handles the write-side business rules for tasks and notes.
// Reads happen through live subscriptions, not through the service.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

func (s *Service) taskFields(ownerID string, d TaskDraft) (Fields, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = "Uncategorized"
	}
	priority := d.Priority
	if priority.Rank() == 0 {
		priority = PriorityMedium
	}
	fields := Fields{
		FieldOwnerID:     ownerID,
		FieldTitle:       title,
		FieldDescription: strings.TrimSpace(d.Description),
		FieldCategory:    category,
		FieldPriority:    string(priority),
		FieldTags:        d.Tags,
		FieldAssignedTo:  strings.TrimSpace(d.AssignedTo),
	}
	if d.DueDate != nil {
		fields[FieldDueDate] = *d.DueDate
	}
	return fields, nil
}

// CreateTask validates the draft and writes a new pending task.
func (s *Service) CreateTask(ctx context.Context, ownerID string, d TaskDraft) (string, error) {
	if ownerID == "" {
		return "", &ValidationError{Field: "owner", Reason: "not signed in"}
	}
	fields, err := s.taskFields(ownerID, d)
	if err != nil {
		return "", err
	}
	fields[FieldCompleted] = false

	id, err := s.store.Create(ctx, CollectionTasks, fields)
	if err != nil {
		return "", err
	}
	s.logger.Debug("task created", "id", id, "owner", ownerID)
	return id, nil
}

// UpdateTask rewrites the editable fields of an existing task.
func (s *Service) UpdateTask(ctx context.Context, ownerID, id string, d TaskDraft) error {
	fields, err := s.taskFields(ownerID, d)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, CollectionTasks, id, fields)
}

// ToggleTaskComplete flips completion state.
// completedAt is set exactly when the task becomes completed and cleared
// when it reverts to pending.
func (s *Service) ToggleTaskComplete(ctx context.Context, id string, completed bool) error {
	fields := Fields{FieldCompleted: completed}
	if completed {
		fields[FieldCompletedAt] = time.Now()
	} else {
		fields[FieldCompletedAt] = nil
	}
	return s.store.Update(ctx, CollectionTasks, id, fields)
}

// DeleteTask removes a task permanently.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	return s.store.Delete(ctx, CollectionTasks, id)
}

func (s *Service) noteFields(ownerID string, d NoteDraft) (Fields, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(d.Content) == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	return Fields{
		FieldOwnerID:    ownerID,
		FieldTitle:      title,
		FieldContent:    d.Content,
		FieldCategory:   strings.TrimSpace(d.Category),
		FieldTags:       d.Tags,
		FieldWordCount:  WordCount(d.Content),
		FieldVoiceInput: d.HasVoiceInput,
		FieldHasSummary: d.HasSummary,
	}, nil
}

// CreateNote validates the draft and writes a new note.
// Word count is computed at save time and not recomputed afterwards.
func (s *Service) CreateNote(ctx context.Context, ownerID string, d NoteDraft) (string, error) {
	if ownerID == "" {
		return "", &ValidationError{Field: "owner", Reason: "not signed in"}
	}
	fields, err := s.noteFields(ownerID, d)
	if err != nil {
		return "", err
	}
	id, err := s.store.Create(ctx, CollectionNotes, fields)
	if err != nil {
		return "", err
	}
	s.logger.Debug("note created", "id", id, "owner", ownerID)
	return id, nil
}

// UpdateNote rewrites an existing note. This is also the auto-save path;
// last writer wins by design.
func (s *Service) UpdateNote(ctx context.Context, ownerID, id string, d NoteDraft) error {
	fields, err := s.noteFields(ownerID, d)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, CollectionNotes, id, fields)
}

// DeleteNote removes a note permanently.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	return s.store.Delete(ctx, CollectionNotes, id)
}

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StoreType string `json:"store_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	storeType := "store"
	if comp, ok := s.store.(introspection.Component); ok {
		storeType = comp.ComponentType()
	}
	return ServiceState{StoreType: storeType}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string { return "service" }

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)

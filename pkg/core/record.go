package core

import "time"

// Decoding is deliberately forgiving: records arrive from a schemaless store
// and may carry missing or mistyped fields. Anything unreadable degrades to
// its zero value; decoding never panics.

// String reads a string field, or "" when absent or mistyped.
func (f Fields) String(key string) string { return stringField(f, key) }

// Bool reads a boolean field, or false when absent or mistyped.
func (f Fields) Bool(key string) bool { return boolField(f, key) }

// Time reads a timestamp field, accepting time.Time values and RFC 3339
// strings. Returns the zero time when absent or unreadable.
func (f Fields) Time(key string) time.Time { return timeField(f, key) }

func stringField(f Fields, key string) string {
	v, _ := f[key].(string)
	return v
}

func boolField(f Fields, key string) bool {
	v, _ := f[key].(bool)
	return v
}

func intField(f Fields, key string) int {
	switch v := f[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// timeField accepts time.Time values and RFC 3339 strings (serialized form).
func timeField(f Fields, key string) time.Time {
	switch v := f[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func timePtrField(f Fields, key string) *time.Time {
	t := timeField(f, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func tagsField(f Fields, key string) []string {
	switch v := f[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// TaskFromRecord decodes a raw record into a Task.
func TaskFromRecord(r Record) Task {
	return Task{
		ID:          r.ID,
		OwnerID:     stringField(r.Fields, FieldOwnerID),
		Title:       stringField(r.Fields, FieldTitle),
		Description: stringField(r.Fields, FieldDescription),
		Category:    stringField(r.Fields, FieldCategory),
		Priority:    ParsePriority(stringField(r.Fields, FieldPriority)),
		DueDate:     timePtrField(r.Fields, FieldDueDate),
		Tags:        tagsField(r.Fields, FieldTags),
		AssignedTo:  stringField(r.Fields, FieldAssignedTo),
		Completed:   boolField(r.Fields, FieldCompleted),
		CompletedAt: timePtrField(r.Fields, FieldCompletedAt),
		CreatedAt:   timeField(r.Fields, FieldCreatedAt),
		UpdatedAt:   timeField(r.Fields, FieldUpdatedAt),
	}
}

// NoteFromRecord decodes a raw record into a Note.
func NoteFromRecord(r Record) Note {
	return Note{
		ID:            r.ID,
		OwnerID:       stringField(r.Fields, FieldOwnerID),
		Title:         stringField(r.Fields, FieldTitle),
		Content:       stringField(r.Fields, FieldContent),
		Category:      stringField(r.Fields, FieldCategory),
		Tags:          tagsField(r.Fields, FieldTags),
		WordCount:     intField(r.Fields, FieldWordCount),
		HasVoiceInput: boolField(r.Fields, FieldVoiceInput),
		HasSummary:    boolField(r.Fields, FieldHasSummary),
		CreatedAt:     timeField(r.Fields, FieldCreatedAt),
		UpdatedAt:     timeField(r.Fields, FieldUpdatedAt),
	}
}

// TasksFromRecords decodes a snapshot's record set.
func TasksFromRecords(records []Record) []Task {
	tasks := make([]Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, TaskFromRecord(r))
	}
	return tasks
}

// NotesFromRecords decodes a snapshot's record set.
func NotesFromRecords(records []Record) []Note {
	notes := make([]Note, 0, len(records))
	for _, r := range records {
		notes = append(notes, NoteFromRecord(r))
	}
	return notes
}

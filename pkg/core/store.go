package core

import "context"

// Field keys shared by all collections. Adapters persist these verbatim so
// that records written by one adapter remain readable by another.
const (
	FieldOwnerID     = "ownerId"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldContent     = "content"
	FieldCategory    = "category"
	FieldPriority    = "priority"
	FieldDueDate     = "dueDate"
	FieldTags        = "tags"
	FieldAssignedTo  = "assignedTo"
	FieldCompleted   = "completed"
	FieldCompletedAt = "completedAt"
	FieldWordCount   = "wordCount"
	FieldVoiceInput  = "hasVoiceInput"
	FieldHasSummary  = "hasSummary"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
)

// Fields is the schemaless payload of a record.
type Fields map[string]any

// Clone returns a shallow copy of the field map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Record is a raw document as delivered by the Store.
type Record struct {
	ID     string
	Fields Fields
}

// Query scopes a subscription to one collection and one owner.
// An empty OwnerID matches all records in the collection.
type Query struct {
	Collection string
	OwnerID    string
	OrderBy    string
	Descending bool
}

// Snapshot is a full push of the current matching record set.
// Seq increases monotonically per subscription; consumers use it to discard
// superseded snapshots.
type Snapshot struct {
	Seq     uint64
	Records []Record
}

// Subscription is a live, cancellable feed of snapshots.
// The channel is closed after Cancel (or context cancellation).
type Subscription struct {
	C      <-chan Snapshot
	cancel func()
}

// NewSubscription wraps a snapshot channel with its cancel function.
// Intended for store adapters.
func NewSubscription(ch <-chan Snapshot, cancel func()) *Subscription {
	return &Subscription{C: ch, cancel: cancel}
}

// Cancel revokes the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Store is the contract for the remote document database.
// Implementations assign record IDs on Create and stamp createdAt/updatedAt
// on write; callers never set timestamps themselves.
type Store interface {
	// Create persists a new record and returns its ID.
	Create(ctx context.Context, collection string, fields Fields) (string, error)

	// Update applies a partial field patch to an existing record.
	Update(ctx context.Context, collection, id string, fields Fields) error

	// Delete removes a record.
	Delete(ctx context.Context, collection, id string) error

	// Subscribe opens a live query. The initial snapshot is delivered on the
	// returned channel, followed by a fresh snapshot after every matching
	// change. Returns ErrUnsupportedOrder if the requested OrderBy cannot be
	// served; the caller then retries without ordering.
	Subscribe(ctx context.Context, q Query) (*Subscription, error)

	// Initialize prepares the underlying storage (directories, indexes).
	Initialize(ctx context.Context) error
}

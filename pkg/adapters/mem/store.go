// Package mem implements core.Store in memory with live subscriptions.
// It deliberately serves no server-side ordering, so consumers exercise the
// unordered-subscription fallback path that a missing index would force.
package mem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/google/uuid"

	"github.com/tasksage/tasksage/pkg/core"
)

type subscriber struct {
	id  int
	q   core.Query
	ch  chan core.Snapshot
	seq uint64
}

// Store is a map-backed document store.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]core.Fields
	subs        map[int]*subscriber
	nextSub     int
	now         func() time.Time
	readOnly    bool
}

// Option configures the store.
type Option func(*Store)

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReadOnly makes all write operations return ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return func(s *Store) { s.readOnly = readOnly }
}

// New creates an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]map[string]core.Fields),
		subs:        make(map[int]*subscriber),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize implements core.Store; nothing to prepare in memory.
func (s *Store) Initialize(ctx context.Context) error { return nil }

// Create assigns an ID, stamps createdAt/updatedAt and notifies subscribers.
func (s *Store) Create(ctx context.Context, collection string, fields core.Fields) (string, error) {
	if s.readOnly {
		return "", core.ErrReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	stored := fields.Clone()
	now := s.now()
	stored[core.FieldCreatedAt] = now
	stored[core.FieldUpdatedAt] = now

	col := s.collections[collection]
	if col == nil {
		col = make(map[string]core.Fields)
		s.collections[collection] = col
	}
	col[id] = stored
	s.notifyLocked(collection)
	return id, nil
}

// Update merges a partial patch into an existing record. A nil value in the
// patch clears the field (how completedAt reverts to unset).
func (s *Store) Update(ctx context.Context, collection, id string, fields core.Fields) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collections[collection]
	stored, ok := col[id]
	if !ok {
		return core.ErrNotFound
	}
	for k, v := range fields {
		if v == nil {
			delete(stored, k)
			continue
		}
		stored[k] = v
	}
	stored[core.FieldUpdatedAt] = s.now()
	s.notifyLocked(collection)
	return nil
}

// Delete removes a record and notifies subscribers.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collections[collection]
	if _, ok := col[id]; !ok {
		return core.ErrNotFound
	}
	delete(col, id)
	s.notifyLocked(collection)
	return nil
}

// Subscribe opens a live query. Ordering is never supported here, matching a
// store with no composite index: any OrderBy yields ErrUnsupportedOrder.
func (s *Store) Subscribe(ctx context.Context, q core.Query) (*core.Subscription, error) {
	if q.OrderBy != "" {
		return nil, core.ErrUnsupportedOrder
	}

	s.mu.Lock()
	s.nextSub++
	sub := &subscriber{
		id: s.nextSub,
		q:  q,
		ch: make(chan core.Snapshot, 1),
	}
	s.subs[sub.id] = sub
	s.pushLocked(sub)
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[sub.id]; ok {
				delete(s.subs, sub.id)
				close(sub.ch)
			}
		})
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}
	return core.NewSubscription(sub.ch, cancel), nil
}

func (s *Store) notifyLocked(collection string) {
	for _, sub := range s.subs {
		if sub.q.Collection == collection {
			s.pushLocked(sub)
		}
	}
}

// pushLocked delivers a fresh snapshot, replacing any undelivered one so a
// slow consumer only ever sees the latest state.
func (s *Store) pushLocked(sub *subscriber) {
	records := make([]core.Record, 0)
	for id, fields := range s.collections[sub.q.Collection] {
		if sub.q.OwnerID != "" {
			owner, _ := fields[core.FieldOwnerID].(string)
			if owner != sub.q.OwnerID {
				continue
			}
		}
		records = append(records, core.Record{ID: id, Fields: fields.Clone()})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	sub.seq++
	snap := core.Snapshot{Seq: sub.seq, Records: records}
	for {
		select {
		case sub.ch <- snap:
			return
		default:
			select {
			case <-sub.ch:
			default:
			}
		}
	}
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Collections map[string]int `json:"collections"`
	Subscribers int            `json:"subscribers"`
	ReadOnly    bool           `json:"read_only"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	sizes := make(map[string]int, len(s.collections))
	for name, col := range s.collections {
		sizes[name] = len(col)
	}
	return StoreState{Collections: sizes, Subscribers: len(s.subs), ReadOnly: s.readOnly}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string { return "mem-store" }

var _ core.Store = (*Store)(nil)
var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

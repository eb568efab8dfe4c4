package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"

	"github.com/tasksage/tasksage/pkg/core"
)

// Sizes of the dashboard "recent" slices.
const (
	recentTaskCount = 5
	recentNoteCount = 3
)

// View is the derived state republished after every input change.
// It is a value; consumers never share mutable state with the engine.
type View struct {
	OwnerID     string
	Stats       Stats
	Tasks       []core.Task
	Notes       []core.Note
	RecentTasks []core.Task
	RecentNotes []core.Note
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine subscribes to the task and note collections of one identity and
// republishes derived views. All state mutation is serialized through one
// mutex; superseded snapshots and feeds from stale bindings are discarded.
type Engine struct {
	store  core.Store
	logger *slog.Logger
	now    func() time.Time

	mu            sync.Mutex
	ownerID       string
	gen           int
	taskQuery     TaskQuery
	noteQuery     NoteQuery
	tasks         []core.Task
	notes         []core.Note
	taskSeq       uint64
	noteSeq       uint64
	localTaskSort bool
	cancels       []func()
	closed        bool

	updates chan View
}

// New creates an Engine over the given store. Call Bind to start deriving.
func New(store core.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		logger:  slog.Default(),
		now:     time.Now,
		updates: make(chan View, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Updates delivers derived views, latest-wins: if the consumer lags, older
// views are dropped so stale derived output never reaches the screen.
func (e *Engine) Updates() <-chan View { return e.updates }

// Bind switches the engine to a new identity. Subscriptions for the previous
// identity are cancelled first; an empty ownerID just tears down and
// publishes an empty view (signed-out state).
func (e *Engine) Bind(ctx context.Context, ownerID string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return core.ErrClosed
	}
	e.gen++
	gen := e.gen
	old := e.cancels
	e.cancels = nil
	e.ownerID = ownerID
	e.tasks, e.notes = nil, nil
	e.taskSeq, e.noteSeq = 0, 0
	e.localTaskSort = false
	e.mu.Unlock()

	for _, cancel := range old {
		cancel()
	}

	if ownerID == "" {
		e.mu.Lock()
		e.publishLocked()
		e.mu.Unlock()
		return nil
	}

	taskSub, localSort, err := e.subscribeTasks(ctx, ownerID)
	if err != nil {
		return err
	}
	noteSub, err := e.store.Subscribe(ctx, core.Query{
		Collection: core.CollectionNotes,
		OwnerID:    ownerID,
	})
	if err != nil {
		taskSub.Cancel()
		return err
	}

	e.mu.Lock()
	if gen != e.gen || e.closed {
		// A newer Bind (or Close) won the race while we were subscribing.
		e.mu.Unlock()
		taskSub.Cancel()
		noteSub.Cancel()
		return nil
	}
	e.localTaskSort = localSort
	e.cancels = append(e.cancels, taskSub.Cancel, noteSub.Cancel)
	e.mu.Unlock()

	e.feed(ctx, taskSub, func(snap core.Snapshot) { e.applyTaskSnapshot(gen, snap) })
	e.feed(ctx, noteSub, func(snap core.Snapshot) { e.applyNoteSnapshot(gen, snap) })
	return nil
}

// subscribeTasks attempts the ordered query first and falls back to an
// unordered subscription with local sorting, but only on the declared
// ErrUnsupportedOrder; unrelated failures propagate.
func (e *Engine) subscribeTasks(ctx context.Context, ownerID string) (*core.Subscription, bool, error) {
	sub, err := e.store.Subscribe(ctx, core.Query{
		Collection: core.CollectionTasks,
		OwnerID:    ownerID,
		OrderBy:    core.FieldCreatedAt,
		Descending: true,
	})
	if err == nil {
		return sub, false, nil
	}
	if !errors.Is(err, core.ErrUnsupportedOrder) {
		return nil, false, err
	}
	e.logger.Debug("ordered task query unsupported, sorting locally", "owner", ownerID)
	sub, err = e.store.Subscribe(ctx, core.Query{
		Collection: core.CollectionTasks,
		OwnerID:    ownerID,
	})
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

func (e *Engine) feed(ctx context.Context, sub *core.Subscription, apply func(core.Snapshot)) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap, ok := <-sub.C:
				if !ok {
					return nil
				}
				apply(snap)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		e.logger.Error("subscription feed panic", "error", err)
	}))
}

func (e *Engine) applyTaskSnapshot(gen int, snap core.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.closed {
		return
	}
	if snap.Seq < e.taskSeq {
		return // superseded
	}
	e.taskSeq = snap.Seq

	tasks := core.TasksFromRecords(snap.Records)
	if e.localTaskSort {
		tasks = SortTasks(tasks, SortCreated)
	}
	e.tasks = tasks
	e.publishLocked()
}

func (e *Engine) applyNoteSnapshot(gen int, snap core.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.closed {
		return
	}
	if snap.Seq < e.noteSeq {
		return
	}
	e.noteSeq = snap.Seq
	e.notes = core.NotesFromRecords(snap.Records)
	e.publishLocked()
}

// SetTaskQuery replaces the task filter/sort/search configuration and
// republishes immediately.
func (e *Engine) SetTaskQuery(q TaskQuery) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.taskQuery = q
	e.publishLocked()
}

// SetNoteQuery replaces the note search configuration and republishes.
func (e *Engine) SetNoteQuery(q NoteQuery) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.noteQuery = q
	e.publishLocked()
}

// Snapshot returns the current derived view (pull-style access).
func (e *Engine) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.composeLocked()
}

func (e *Engine) composeLocked() View {
	now := e.now()

	filtered := FilterTasks(e.tasks, e.taskQuery, now)
	if e.taskQuery.Sort != "" && e.taskQuery.Sort != SortCreated {
		filtered = SortTasks(filtered, e.taskQuery.Sort)
	}

	stats := Stats{}.
		MergeTasks(ReduceTasks(e.tasks, now)).
		MergeNotes(ReduceNotes(e.notes))

	return View{
		OwnerID:     e.ownerID,
		Stats:       stats,
		Tasks:       filtered,
		Notes:       FilterNotes(e.notes, e.noteQuery),
		RecentTasks: RecentTasks(e.tasks, recentTaskCount),
		RecentNotes: RecentNotes(e.notes, recentNoteCount),
	}
}

// publishLocked pushes the current view, replacing any undelivered one.
func (e *Engine) publishLocked() {
	v := e.composeLocked()
	for {
		select {
		case e.updates <- v:
			return
		default:
			select {
			case <-e.updates:
			default:
			}
		}
	}
}

// Close cancels all subscriptions. The engine cannot be rebound afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.gen++
	cancels := e.cancels
	e.cancels = nil
	e.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// EngineState exposes internal state for observability.
type EngineState struct {
	OwnerID       string `json:"owner_id"`
	TaskCount     int    `json:"task_count"`
	NoteCount     int    `json:"note_count"`
	LocalTaskSort bool   `json:"local_task_sort"`
	Generation    int    `json:"generation"`
}

// State implements introspection.Introspectable.
func (e *Engine) State() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineState{
		OwnerID:       e.ownerID,
		TaskCount:     len(e.tasks),
		NoteCount:     len(e.notes),
		LocalTaskSort: e.localTaskSort,
		Generation:    e.gen,
	}
}

// ComponentType implements introspection.Component.
func (e *Engine) ComponentType() string { return "view-engine" }

var _ introspection.Introspectable = (*Engine)(nil)
var _ introspection.Component = (*Engine)(nil)

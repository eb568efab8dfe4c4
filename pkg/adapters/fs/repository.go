// Package fs implements core.Store on a directory tree: one subdirectory
// per collection, one Markdown file with YAML frontmatter per record.
// Subscriptions are driven by an fsnotify watcher, so records edited by
// external tools flow into live views like any other write.
package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/tasksage/tasksage/pkg/core"
)

// DefaultSystemDir is the hidden directory holding the metadata index.
const DefaultSystemDir = ".tasksage"

// Config holds the configuration for the filesystem store.
type Config struct {
	Path      string
	SystemDir string // e.g. ".tasksage"
	Logger    *slog.Logger
	ReadOnly  bool
	MustExist bool
	// Ignore are doublestar patterns (relative to Path) the watcher skips,
	// in addition to the built-in rules.
	Ignore []string
	// Debounce is the quiet window for coalescing filesystem events.
	Debounce time.Duration
	// Clock overrides the timestamp source (tests).
	Clock func() time.Time
	// ErrorHandler receives watcher runtime errors, if set.
	ErrorHandler func(error)
}

type subscriber struct {
	id  int
	q   core.Query
	ch  chan core.Snapshot
	seq uint64
}

// Store implements core.Store over the filesystem.
type Store struct {
	Path   string
	config Config
	cache  *cache
	now    func() time.Time

	mu            sync.Mutex
	subs          map[int]*subscriber
	nextSub       int
	watcher       *watchWorker
	watcherCancel context.CancelFunc
	watcherActive bool
	closed        bool
}

// NewStore creates a filesystem-backed store rooted at config.Path.
func NewStore(config Config) *Store {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	now := config.Clock
	if now == nil {
		now = time.Now
	}
	return &Store{
		Path:   config.Path,
		config: config,
		cache:  newCache(config.Path, config.SystemDir),
		now:    now,
		subs:   make(map[int]*subscriber),
	}
}

// Initialize prepares the root directory and loads the metadata index.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("store path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", s.Path)
		}
	} else if !s.config.ReadOnly {
		if err := os.MkdirAll(s.Path, 0755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	if err := s.cache.Load(); err != nil {
		s.logDebug("index cache unreadable, starting fresh", "error", err)
	}
	return nil
}

func (s *Store) logDebug(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, args...)
	}
}

func (s *Store) recordPath(collection, id string) string {
	return filepath.Join(s.Path, collection, id+".md")
}

func (s *Store) relPath(collection, id string) string {
	return filepath.ToSlash(filepath.Join(collection, id+".md"))
}

// Create assigns an ID, stamps timestamps and writes the record atomically.
func (s *Store) Create(ctx context.Context, collection string, fields core.Fields) (string, error) {
	if s.config.ReadOnly {
		return "", core.ErrReadOnly
	}
	id := uuid.NewString()
	stored := fields.Clone()
	now := s.now()
	stored[core.FieldCreatedAt] = now
	stored[core.FieldUpdatedAt] = now

	if err := s.writeRecord(collection, id, stored); err != nil {
		return "", err
	}
	s.notify(collection)
	return id, nil
}

// Update merges a partial patch into an existing record. A nil patch value
// clears the field.
func (s *Store) Update(ctx context.Context, collection, id string, fields core.Fields) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	current, err := s.readRecord(collection, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		if v == nil {
			delete(current, k)
			continue
		}
		current[k] = v
	}
	current[core.FieldUpdatedAt] = s.now()

	if err := s.writeRecord(collection, id, current); err != nil {
		return err
	}
	s.notify(collection)
	return nil
}

// Delete removes the record file and its index entry.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	path := s.recordPath(collection, id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return core.ErrNotFound
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}
	s.cache.Forget(s.relPath(collection, id))
	if err := s.cache.Save(); err != nil {
		s.logDebug("failed to persist index cache", "error", err)
	}
	s.notify(collection)
	return nil
}

func (s *Store) writeRecord(collection, id string, fields core.Fields) error {
	data, err := encodeRecord(fields)
	if err != nil {
		return err
	}
	dir := filepath.Join(s.Path, collection)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create collection directory: %w", err)
	}
	path := s.recordPath(collection, id)
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return err
	}

	if info, err := os.Stat(path); err == nil {
		s.cache.Put(s.relPath(collection, id), &indexEntry{
			ID:           id,
			Fields:       fields.Clone(),
			LastModified: info.ModTime(),
		})
		if err := s.cache.Save(); err != nil {
			s.logDebug("failed to persist index cache", "error", err)
		}
	}
	return nil
}

func (s *Store) readRecord(collection, id string) (core.Fields, error) {
	path := s.recordPath(collection, id)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if entry, ok := s.cache.Get(s.relPath(collection, id), info.ModTime()); ok {
		return entry.Fields.Clone(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	fields, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	s.cache.Put(s.relPath(collection, id), &indexEntry{
		ID:           id,
		Fields:       fields.Clone(),
		LastModified: info.ModTime(),
	})
	return fields, nil
}

// listCollection reads every record in a collection, using the index cache
// for unchanged files. Unreadable files are skipped, not fatal: one bad
// record must not blank the whole view.
func (s *Store) listCollection(collection string) []core.Record {
	dir := filepath.Join(s.Path, collection)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	records := make([]core.Record, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") || strings.HasPrefix(name, TempFilePrefix) {
			continue
		}
		id := strings.TrimSuffix(name, ".md")
		fields, err := s.readRecord(collection, id)
		if err != nil {
			s.logDebug("skipping unreadable record", "collection", collection, "id", id, "error", err)
			continue
		}
		records = append(records, core.Record{ID: id, Fields: fields})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

// Subscribe opens a live query. The only ordering served natively is by
// createdAt; any other key returns ErrUnsupportedOrder so the caller can
// fall back to local sorting.
func (s *Store) Subscribe(ctx context.Context, q core.Query) (*core.Subscription, error) {
	if q.OrderBy != "" && q.OrderBy != core.FieldCreatedAt {
		return nil, core.ErrUnsupportedOrder
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, core.ErrClosed
	}
	if err := s.ensureWatcherLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
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

// ensureWatcherLocked starts the fsnotify worker on first subscription.
// Its lifetime is owned by the store, not by any one subscriber's context.
func (s *Store) ensureWatcherLocked() error {
	if s.watcher != nil {
		return nil
	}
	worker := newWatchWorker(s)
	ctx, cancel := context.WithCancel(context.Background())
	if err := worker.Start(ctx); err != nil {
		cancel()
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	s.watcher = worker
	s.watcherCancel = cancel
	s.watcherActive = true
	return nil
}

// notify recomputes and pushes snapshots for every subscriber of the
// collection.
func (s *Store) notify(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.q.Collection == collection {
			s.pushLocked(sub)
		}
	}
}

func (s *Store) pushLocked(sub *subscriber) {
	records := s.listCollection(sub.q.Collection)
	if sub.q.OwnerID != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.Fields.String(core.FieldOwnerID) == sub.q.OwnerID {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if sub.q.OrderBy == core.FieldCreatedAt {
		desc := sub.q.Descending
		sort.SliceStable(records, func(i, j int) bool {
			a := records[i].Fields.Time(core.FieldCreatedAt)
			b := records[j].Fields.Time(core.FieldCreatedAt)
			if desc {
				return a.After(b)
			}
			return a.Before(b)
		})
	}

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

// shouldIgnore filters watcher events: the system directory, atomic-write
// temp files, hidden files, non-record files, and user-configured patterns.
func (s *Store) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(s.Path, path)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)

	if strings.HasPrefix(rel, s.config.SystemDir+"/") || rel == s.config.SystemDir {
		return true
	}
	if strings.HasPrefix(base, TempFilePrefix) || strings.HasPrefix(base, ".") {
		return true
	}
	if !strings.HasSuffix(base, ".md") {
		return true
	}
	for _, pattern := range s.config.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// resolveCollection maps an event path to its collection (the first path
// element under the root), or "" if the path is not inside a collection.
func (s *Store) resolveCollection(path string) string {
	rel, err := filepath.Rel(s.Path, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// invalidate drops the cache entry for an externally changed file so the
// next list re-parses it.
func (s *Store) invalidate(path string) {
	rel, err := filepath.Rel(s.Path, path)
	if err != nil {
		return
	}
	s.cache.Forget(filepath.ToSlash(rel))
}

// Close stops the watcher and cancels every open subscription.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := s.subs
	s.subs = make(map[int]*subscriber)
	watcher := s.watcher
	cancel := s.watcherCancel
	s.watcher = nil
	s.watcherActive = false
	s.mu.Unlock()

	for _, sub := range subs {
		close(sub.ch)
	}
	if cancel != nil {
		cancel()
	}
	if watcher != nil {
		_ = watcher.Stop(context.Background())
	}
	return s.cache.Save()
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string `json:"path"`
	SystemDir     string `json:"system_dir"`
	CacheSize     int    `json:"cache_size"`
	ReadOnly      bool   `json:"read_only"`
	WatcherActive bool   `json:"watcher_active"`
	Subscribers   int    `json:"subscribers"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StoreState{
		Path:          s.Path,
		SystemDir:     s.config.SystemDir,
		CacheSize:     s.cache.Len(),
		ReadOnly:      s.config.ReadOnly,
		WatcherActive: s.watcherActive,
		Subscribers:   len(s.subs),
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string { return "fs-store" }

var _ core.Store = (*Store)(nil)
var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

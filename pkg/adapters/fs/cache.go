package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tasksage/tasksage/pkg/core"
)

// indexEntry holds the parsed fields of a single record file.
type indexEntry struct {
	ID           string      `json:"id"`
	Fields       core.Fields `json:"fields,omitempty"`
	LastModified time.Time   `json:"lastModified"`
}

// index is the persistent cache state.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // key: relative path, e.g. "tasks/<id>.md"
	dirty   bool
	mu      sync.RWMutex
}

// cache avoids re-parsing record files whose mtime has not changed.
// It lives under the system directory and self-heals on corruption.
type cache struct {
	Path  string
	index *index
}

func newCache(rootPath, systemDir string) *cache {
	return &cache{
		Path: filepath.Join(rootPath, systemDir, "index.json"),
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the cache from disk. A missing or corrupted file starts fresh.
func (c *cache) Load() error {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal(data, c.index); err != nil {
		c.index.Entries = make(map[string]*indexEntry)
		return nil
	}
	c.index.dirty = false
	return nil
}

// Save persists the cache if it is dirty.
func (c *cache) Save() error {
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.index.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}
	if err := writeFileAtomic(c.Path, data, 0644); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()
	return nil
}

// Get returns a fresh entry, or false on miss or stale mtime.
func (c *cache) Get(relPath string, currentMtime time.Time) (*indexEntry, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[relPath]
	if !ok || !entry.LastModified.Equal(currentMtime) {
		return nil, false
	}
	return entry, true
}

// Put records a parsed entry.
func (c *cache) Put(relPath string, entry *indexEntry) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()
	c.index.Entries[relPath] = entry
	c.index.dirty = true
}

// Forget drops an entry (record deleted).
func (c *cache) Forget(relPath string) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()
	if _, ok := c.index.Entries[relPath]; ok {
		delete(c.index.Entries, relPath)
		c.index.dirty = true
	}
}

// Len returns the number of cached entries.
func (c *cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}

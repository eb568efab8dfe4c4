package tasksage

import (
	"log/slog"
	"time"

	"github.com/tasksage/tasksage/internal/platform"
	"github.com/tasksage/tasksage/pkg/core"
	"github.com/tasksage/tasksage/pkg/engine"
	"github.com/tasksage/tasksage/pkg/summarize"
)

// --- Types ---

// App is the public alias for a wired TaskSage instance.
type App = platform.App

// Task is a public alias for the task domain type.
type Task = core.Task

// Note is a public alias for the note domain type.
type Note = core.Note

// User is a public alias for the identity type.
type User = core.User

// View is a public alias for the derived view state.
type View = engine.View

// --- Configuration ---

// Option defines a functional option for configuring TaskSage.
type Option = platform.Option

// WithLogger sets the logger for the app.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the storage adapter by name ("fs" or "mem").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithSystemDir allows specifying the hidden metadata directory name.
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithIgnore adds patterns the filesystem watcher skips.
func WithIgnore(patterns ...string) Option {
	return platform.WithIgnore(patterns...)
}

// WithDebounce sets the quiet window for coalescing filesystem events.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithAuthSecret enables the local auth provider with the given signing
// secret.
func WithAuthSecret(secret []byte) Option {
	return platform.WithAuthSecret(secret)
}

// WithWatcherErrorHandler registers a callback for watch loop errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a fully wired TaskSage app.
func New(path string, opts ...Option) (*App, error) {
	return platform.New(path, opts...)
}

// Init initializes a storage adapter explicitly.
func Init(path string, opts ...Option) (core.Store, error) {
	return platform.Init(path, opts...)
}

// NewEngine creates a derived-view engine over a store.
func NewEngine(store core.Store, opts ...engine.Option) *engine.Engine {
	return engine.New(store, opts...)
}

// --- Operations ---

// Summarize produces an extractive summary of free text.
func Summarize(text string) summarize.Result {
	return summarize.Summarize(text)
}

package platform

import (
	"log/slog"
	"time"

	"github.com/tasksage/tasksage/pkg/core"
)

// options holds the internal configuration for the TaskSage app.
type options struct {
	store   core.Store
	logger  *slog.Logger
	adapter string
	config  map[string]interface{}
}

// Option defines a functional option for configuring TaskSage.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		store:   nil,
		logger:  nil,
		adapter: "fs",
		config:  make(map[string]interface{}),
	}
}

// WithLogger sets the logger for the app.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore allows injecting a custom storage adapter (e.g. mock, cloud).
// If provided, the named adapter is skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the storage adapter by name ("fs" or "mem").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithSystemDir allows specifying the hidden metadata directory name.
// Defaults to ".tasksage" (handled by the adapter).
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithReadOnly enables read-only mode: write operations return ErrReadOnly
// and initialization does not create directories.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithIgnore adds doublestar patterns the filesystem watcher skips.
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.config["ignore"] = patterns
	}
}

// WithDebounce sets the quiet window for coalescing filesystem events.
// Zero means the adapter default.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.config["debounce"] = d
	}
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.config["clock"] = now
	}
}

// WithWatcherErrorHandler registers a callback for errors occurring during
// the watch loop (e.g. permission denied), which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithAuthSecret sets the signing secret for session tokens. When present,
// New wires a local auth provider over the store's users collection.
func WithAuthSecret(secret []byte) Option {
	return func(o *options) {
		o.config["auth_secret"] = secret
	}
}

func (o *options) boolConfig(key string) bool {
	v, _ := o.config[key].(bool)
	return v
}

func (o *options) stringConfig(key string) string {
	v, _ := o.config[key].(string)
	return v
}

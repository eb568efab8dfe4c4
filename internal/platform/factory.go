package platform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tasksage/tasksage/pkg/adapters/fs"
	"github.com/tasksage/tasksage/pkg/adapters/localauth"
	"github.com/tasksage/tasksage/pkg/adapters/mem"
	"github.com/tasksage/tasksage/pkg/core"
)

// App bundles the wired components of a TaskSage instance.
type App struct {
	Store   core.Store
	Service *core.Service
	Auth    core.AuthProvider

	logger *slog.Logger
	closer func()
}

// Logger returns the app-wide logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Close releases adapter resources (watchers, subscriptions).
func (a *App) Close() {
	if a.closer != nil {
		a.closer()
	}
}

// Init builds and initializes the storage adapter without wiring the rest
// of the app. The URI argument is adapter-specific: a directory path for
// "fs", ignored for "mem".
func Init(uri string, opts ...Option) (core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	store, err := buildStore(uri, o)
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func buildStore(uri string, o *options) (core.Store, error) {
	if o.store != nil {
		return o.store, nil
	}

	clock, _ := o.config["clock"].(func() time.Time)

	switch o.adapter {
	case "fs":
		ignore, _ := o.config["ignore"].([]string)
		debounce, _ := o.config["debounce"].(time.Duration)
		errorHandler, _ := o.config["watcher_error_handler"].(func(error))
		return fs.NewStore(fs.Config{
			Path:         uri,
			SystemDir:    o.stringConfig("system_dir"),
			Logger:       o.logger,
			ReadOnly:     o.boolConfig("read_only"),
			MustExist:    o.boolConfig("must_exist"),
			Ignore:       ignore,
			Debounce:     debounce,
			Clock:        clock,
			ErrorHandler: errorHandler,
		}), nil
	case "mem":
		memOpts := []mem.Option{mem.WithReadOnly(o.boolConfig("read_only"))}
		if clock != nil {
			memOpts = append(memOpts, mem.WithClock(clock))
		}
		return mem.New(memOpts...), nil
	default:
		return nil, fmt.Errorf("unknown adapter %q", o.adapter)
	}
}

// New creates a fully wired TaskSage app: store, domain service and,
// when an auth secret is configured, a local auth provider.
func New(uri string, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := buildStore(uri, o)
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(context.Background()); err != nil {
		return nil, err
	}

	app := &App{
		Store:   store,
		Service: core.NewService(store, logger),
		logger:  logger,
	}

	var closers []func()
	if closer, ok := store.(interface{ Close() }); ok {
		closers = append(closers, closer.Close)
	}

	if secret, ok := o.config["auth_secret"].([]byte); ok && len(secret) > 0 {
		authOpts := []localauth.Option{localauth.WithLogger(logger)}
		if clock, ok := o.config["clock"].(func() time.Time); ok {
			authOpts = append(authOpts, localauth.WithClock(clock))
		}
		auth, err := localauth.New(context.Background(), store, secret, authOpts...)
		if err != nil {
			for _, fn := range closers {
				fn()
			}
			return nil, err
		}
		app.Auth = auth
		closers = append([]func(){auth.Close}, closers...)
	}

	app.closer = func() {
		for _, fn := range closers {
			fn()
		}
	}
	return app, nil
}

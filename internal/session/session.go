// Package session ties a window's position map to its lifetime: the map is
// loaded when a window session opens and persisted when it closes.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/uifind/internal/criteria"
	"github.com/1broseidon/uifind/internal/finder"
	"github.com/1broseidon/uifind/internal/item"
	"github.com/1broseidon/uifind/internal/itemmap"
	"github.com/1broseidon/uifind/internal/lookup"
	"github.com/1broseidon/uifind/internal/platform"
	"github.com/1broseidon/uifind/internal/store"
)

// InitializeOption describes how a window session is opened.
type InitializeOption struct {
	// Identifier is the stable window identity used by the store.
	Identifier string
	// Cached loads and persists the position map under Identifier.
	Cached bool
}

// Cached returns an option that persists positions under identifier.
func Cached(identifier string) *InitializeOption {
	return &InitializeOption{Identifier: identifier, Cached: identifier != ""}
}

// NonCached stops further loads from the store for this option.
func (o *InitializeOption) NonCached() *InitializeOption {
	o.Cached = false
	return o
}

// Options configures an Application.
type Options struct {
	SearchTimeout time.Duration
	RetryInterval time.Duration
	Registry      *item.Registry
	Logger        *slog.Logger
}

// Application owns the window sessions opened against one backend.
type Application struct {
	backend  platform.Backend
	store    store.Store
	registry *item.Registry
	opts     Options
	logger   *slog.Logger

	mu      sync.Mutex
	windows []*Window
}

// NewApplication creates an application session. A nil store disables
// persistence.
func NewApplication(backend platform.Backend, st store.Store, opts Options) *Application {
	if opts.Registry == nil {
		opts.Registry = item.DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Application{
		backend:  backend,
		store:    st,
		registry: opts.Registry,
		opts:     opts,
		logger:   opts.Logger,
	}
}

// Backend returns the platform backend sessions probe and search with.
func (a *Application) Backend() platform.Backend {
	return a.backend
}

// Registry returns the item registry shared by all sessions.
func (a *Application) Registry() *item.Registry {
	return a.registry
}

// WindowSession opens a session for one window. When opt is cached, the
// position map stored under its identifier is restored and opt is switched to
// non-cached so the same option does not reload it.
func (a *Application) WindowSession(opt *InitializeOption) *Window {
	if opt == nil {
		opt = &InitializeOption{}
	}

	persist := opt.Cached && opt.Identifier != "" && a.store != nil
	var cache *itemmap.Map
	if persist {
		cache = itemmap.LoadFrom(a.store, opt.Identifier, a.logger)
		if cache.LoadedFromFile() {
			opt.NonCached()
		}
	} else {
		cache = itemmap.New()
	}

	logger := a.logger.With("window", opt.Identifier)
	w := &Window{
		app:      a,
		option:   opt,
		identity: opt.Identifier,
		persist:  persist,
		logger:   logger,
		coord: lookup.New(cache, a.backend, lookup.Options{
			DefaultTimeout: a.opts.SearchTimeout,
			RetryInterval:  a.opts.RetryInterval,
			Registry:       a.registry,
			Logger:         logger,
		}),
	}

	a.mu.Lock()
	a.windows = append(a.windows, w)
	a.mu.Unlock()
	return w
}

// ModalWindowSession opens a session for a dialog spawned from a window. It
// has its own position map and is closed with the application.
func (a *Application) ModalWindowSession(opt *InitializeOption) *Window {
	return a.WindowSession(opt)
}

// Close closes every open window session. Save failures are logged by each
// session and never abort the others.
func (a *Application) Close() {
	a.mu.Lock()
	windows := a.windows
	a.windows = nil
	a.mu.Unlock()

	for _, w := range windows {
		w.Close()
	}
}

// Window is the session of one top-level window. It is not safe for
// concurrent use.
type Window struct {
	app      *Application
	option   *InitializeOption
	identity string
	persist  bool
	coord    *lookup.Coordinator
	logger   *slog.Logger

	window     platform.Window
	registered bool
	closeOnce  sync.Once
}

// Identifier returns the identity the session persists under.
func (w *Window) Identifier() string {
	return w.identity
}

// Option returns the initialize option the session was opened with.
func (w *Window) Option() *InitializeOption {
	return w.option
}

// Cache returns the session's position map.
func (w *Window) Cache() *itemmap.Map {
	return w.coord.Cache()
}

// Register binds the session to win: the window is focused and its location
// recorded.
func (w *Window) Register(win platform.Window) error {
	w.window = win
	w.registered = true
	if err := w.app.backend.Focus(win.ID); err != nil {
		return fmt.Errorf("focus window %d: %w", win.ID, err)
	}
	w.LocationChanged(win.Location())
	return nil
}

// LocationChanged records the window's position. A move invalidates every
// stored item position.
func (w *Window) LocationChanged(pos platform.Point) {
	if w.coord.Cache().WindowMoved(pos) {
		w.logger.Debug("window moved, cleared item positions", "position", pos.String())
	}
}

// Get looks up an item inside the window. A nil factory searches the
// registered window's element tree.
func (w *Window) Get(f lookup.Factory, c criteria.Criteria, l item.ActionListener, opts ...lookup.GetOption) lookup.Result {
	if f == nil {
		f = w.Factory()
	}
	return w.coord.Get(f, c, l, opts...)
}

// Factory returns a tree search over the registered window, or nil when no
// window is registered.
func (w *Window) Factory() lookup.Factory {
	if !w.registered {
		return nil
	}
	return finder.NewTreeFactory(w.app.backend, w.window.ID, w.app.registry)
}

// Close persists the position map. Only the first call has any effect; a
// failed save is logged since a lost map only costs speed.
func (w *Window) Close() {
	w.closeOnce.Do(func() {
		if !w.persist {
			return
		}
		w.Cache().SaveTo(w.app.store, w.identity, w.logger)
	})
}

// WindowIdentity derives a store identifier for win as class:title.
func WindowIdentity(win platform.Window) string {
	class := strings.TrimSpace(win.AppID)
	title := strings.TrimSpace(win.Title)
	switch {
	case class == "" && title == "":
		return fmt.Sprintf("window-%d", win.ID)
	case class == "":
		return title
	case title == "":
		return class
	}
	return class + ":" + title
}

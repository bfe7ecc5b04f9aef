// Package itemmap remembers where each looked-up item was last seen on screen.
//
// A Map belongs to one window session. Its points are hints only: callers must
// re-validate whatever currently occupies a point before trusting it. All
// points are only meaningful while the owning window stays where it was, so a
// window move drops every entry.
//
// A Map is not safe for concurrent use.
package itemmap

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/1broseidon/uifind/internal/criteria"
	"github.com/1broseidon/uifind/internal/platform"
	"github.com/1broseidon/uifind/internal/store"
)

// Map is a position cache for one top-level window.
type Map struct {
	items          map[criteria.Criteria]platform.Point
	windowPosition platform.Point
	loadedFromFile bool
}

// Entry is a single cached location.
type Entry struct {
	Criteria criteria.Criteria
	Point    platform.Point
}

// New returns an empty map with an unknown window position.
func New() *Map {
	return &Map{
		items:          make(map[criteria.Criteria]platform.Point),
		windowPosition: platform.NoPosition,
	}
}

// Lookup returns the last known point for c, or platform.NoPosition. Keys are
// normalized, so criteria differing only in case or spacing share an entry.
func (m *Map) Lookup(c criteria.Criteria) platform.Point {
	if p, ok := m.items[c.Normalize()]; ok {
		return p
	}
	return platform.NoPosition
}

// Record stores p for c. Other keys that pointed at p are dropped since only
// one control can occupy a point at a time. Recording NoPosition forgets c.
func (m *Map) Record(c criteria.Criteria, p platform.Point) {
	c = c.Normalize()
	if !p.Known() {
		delete(m.items, c)
		return
	}
	for other, q := range m.items {
		if q == p && other != c {
			delete(m.items, other)
		}
	}
	m.items[c] = p
}

// Forget drops the entry for c.
func (m *Map) Forget(c criteria.Criteria) {
	delete(m.items, c.Normalize())
}

// WindowMoved records the window's current position. When it differs from the
// previous one every item entry is dropped and WindowMoved returns true.
//
// A map that has entries but no anchor position (for example one restored
// from a record written without it) treats the first report as a move.
func (m *Map) WindowMoved(pos platform.Point) bool {
	if pos == m.windowPosition {
		return false
	}
	moved := m.windowPosition.Known() || len(m.items) > 0
	m.windowPosition = pos
	if moved {
		m.Clear()
	}
	return moved
}

// WindowPosition returns the last recorded window position.
func (m *Map) WindowPosition() platform.Point {
	return m.windowPosition
}

// Clear drops every item entry and keeps the window position.
func (m *Map) Clear() {
	for k := range m.items {
		delete(m.items, k)
	}
}

func (m *Map) Len() int {
	return len(m.items)
}

// LoadedFromFile reports whether entries were restored from a store.
func (m *Map) LoadedFromFile() bool {
	return m.loadedFromFile
}

// Entries returns the cached entries ordered by criteria key.
func (m *Map) Entries() []Entry {
	out := make([]Entry, 0, len(m.items))
	for c, p := range m.items {
		out = append(out, Entry{Criteria: c, Point: p})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Criteria.Key() < out[j].Criteria.Key()
	})
	return out
}

// LoadFrom restores the map persisted for identity. Missing or unreadable
// records give an empty map: losing the cache only costs speed.
func LoadFrom(st store.Store, identity string, logger *slog.Logger) *Map {
	logger = orDiscard(logger)
	m := New()
	if st == nil {
		return m
	}

	snap, err := st.Load(identity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Debug("no stored position map", "identity", identity)
		} else {
			logger.Warn("ignoring unreadable position map", "identity", identity, "error", err)
		}
		return m
	}

	m.windowPosition = snap.WindowPosition
	for _, e := range snap.Entries {
		if !e.Point.Known() {
			continue
		}
		m.items[e.Criteria.Normalize()] = e.Point
	}
	m.loadedFromFile = true

	logger.Debug("loaded position map",
		"identity", identity,
		"entries", len(m.items),
		"window", m.windowPosition.String())
	return m
}

// SaveTo persists the map under identity. Failures are logged and swallowed.
func (m *Map) SaveTo(st store.Store, identity string, logger *slog.Logger) {
	logger = orDiscard(logger)
	if st == nil {
		return
	}

	snap := m.Snapshot(identity)
	if err := st.Save(snap); err != nil {
		logger.Warn("failed to save position map", "identity", identity, "error", err)
		return
	}
	logger.Debug("saved position map", "identity", identity, "entries", len(snap.Entries))
}

// Snapshot returns the persisted form of the map.
func (m *Map) Snapshot(identity string) *store.Snapshot {
	entries := m.Entries()
	snap := &store.Snapshot{
		Identity:       identity,
		WindowPosition: m.windowPosition,
		Entries:        make([]store.Entry, 0, len(entries)),
		SavedAt:        time.Now().UTC(),
	}
	for _, e := range entries {
		snap.Entries = append(snap.Entries, store.Entry{Criteria: e.Criteria, Point: e.Point})
	}
	return snap
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

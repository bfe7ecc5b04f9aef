// Package store persists position maps between test sessions, one record per
// window identity.
package store

import (
	"errors"
	"time"

	"github.com/1broseidon/uifind/internal/criteria"
	"github.com/1broseidon/uifind/internal/platform"
)

// ErrNotFound is returned when no record exists for an identity.
var ErrNotFound = errors.New("no stored position map")

// Entry is one cached item location.
type Entry struct {
	Criteria criteria.Criteria `json:"criteria"`
	Point    platform.Point    `json:"point"`
}

// Snapshot is the persisted form of a position map.
type Snapshot struct {
	Identity       string         `json:"identity"`
	WindowPosition platform.Point `json:"window_position"`
	Entries        []Entry        `json:"entries"`
	SavedAt        time.Time      `json:"saved_at"`
}

// Store loads and saves snapshots keyed by a stable window identity.
type Store interface {
	Load(identity string) (*Snapshot, error)
	Save(snap *Snapshot) error
}

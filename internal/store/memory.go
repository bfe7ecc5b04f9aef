package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps snapshots in process. Records are deep-copied through
// JSON so callers never share state with the store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (s *MemoryStore) Load(identity string) (*Snapshot, error) {
	if err := validateIdentity(identity); err != nil {
		return nil, err
	}
	s.mu.Lock()
	data, ok := s.records[identity]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse position map %q: %w", identity, err)
	}
	return &snap, nil
}

func (s *MemoryStore) Save(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if err := validateIdentity(snap.Identity); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode position map: %w", err)
	}
	s.mu.Lock()
	s.records[snap.Identity] = data
	s.mu.Unlock()
	return nil
}

// Put stores raw bytes for identity, bypassing encoding.
func (s *MemoryStore) Put(identity string, data []byte) {
	s.mu.Lock()
	s.records[identity] = append([]byte(nil), data...)
	s.mu.Unlock()
}

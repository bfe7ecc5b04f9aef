package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileStore keeps one JSON file per window identity under Dir.
type FileStore struct {
	Dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir. The directory is created on
// first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func validateIdentity(identity string) error {
	if strings.TrimSpace(identity) == "" {
		return fmt.Errorf("window identity is required")
	}
	return nil
}

// Path returns the file backing identity.
func (s *FileStore) Path(identity string) (string, error) {
	if err := validateIdentity(identity); err != nil {
		return "", err
	}
	if strings.TrimSpace(s.Dir) == "" {
		return "", fmt.Errorf("position store directory is not set")
	}
	return filepath.Join(s.Dir, fileName(identity)), nil
}

// Load reads the snapshot for identity. It returns ErrNotFound when no file
// exists.
func (s *FileStore) Load(identity string) (*Snapshot, error) {
	path, err := s.Path(identity)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read position map %q: %w", identity, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse position map %q: %w", identity, err)
	}
	if snap.Identity != "" && snap.Identity != identity {
		return nil, fmt.Errorf("position map %q belongs to %q", identity, snap.Identity)
	}
	snap.Identity = identity
	return &snap, nil
}

// Save writes snap to its identity's file.
func (s *FileStore) Save(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}
	path, err := s.Path(snap.Identity)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create position store directory: %w", err)
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode position map: %w", err)
	}

	// Readers never see a partially written record.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write position map %q: %w", snap.Identity, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write position map %q: %w", snap.Identity, err)
	}
	return nil
}

// Delete removes the record for identity.
func (s *FileStore) Delete(identity string) error {
	path, err := s.Path(identity)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete position map %q: %w", identity, err)
	}
	return nil
}

// List returns the identities of all readable records, sorted.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list position maps: %w", err)
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			continue
		}
		var head struct {
			Identity string `json:"identity"`
		}
		if err := json.Unmarshal(data, &head); err != nil || head.Identity == "" {
			continue
		}
		out = append(out, head.Identity)
	}
	sort.Strings(out)
	return out, nil
}

// fileName turns an identity into a safe, collision-resistant file name.
func fileName(identity string) string {
	var sb strings.Builder
	for _, r := range identity {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
		if sb.Len() >= 48 {
			break
		}
	}
	sum := sha256.Sum256([]byte(identity))
	return strings.Trim(sb.String(), ".") + "-" + hex.EncodeToString(sum[:6]) + ".json"
}

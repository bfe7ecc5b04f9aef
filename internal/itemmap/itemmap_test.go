package itemmap

import (
	"errors"
	"reflect"
	"testing"

	"github.com/1broseidon/uifind/internal/criteria"
	"github.com/1broseidon/uifind/internal/platform"
	"github.com/1broseidon/uifind/internal/store"
)

var (
	saveButton = criteria.ByAutomationID("save").AndControlType("button")
	fileMenu   = criteria.ByText("File").AndControlType("menu")
)

func TestLookup_UnknownKeyReturnsSentinel(t *testing.T) {
	m := New()
	if got := m.Lookup(saveButton); got != platform.NoPosition {
		t.Fatalf("Lookup() = %v, want NoPosition", got)
	}
}

func TestRecord_LastWriteWins(t *testing.T) {
	m := New()
	m.Record(saveButton, platform.Point{X: 1, Y: 2})
	m.Record(saveButton, platform.Point{X: 3, Y: 4})

	if got := m.Lookup(saveButton); got != (platform.Point{X: 3, Y: 4}) {
		t.Fatalf("Lookup() = %v, want (3,4)", got)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
}

func TestRecord_EvictsOtherKeysAtSamePoint(t *testing.T) {
	m := New()
	p := platform.Point{X: 10, Y: 10}
	m.Record(saveButton, p)
	m.Record(fileMenu, p)

	if got := m.Lookup(saveButton); got.Known() {
		t.Fatalf("expected saveButton to be evicted, got %v", got)
	}
	if got := m.Lookup(fileMenu); got != p {
		t.Fatalf("Lookup(fileMenu) = %v, want %v", got, p)
	}
}

func TestRecord_NoPositionForgets(t *testing.T) {
	m := New()
	m.Record(saveButton, platform.Point{X: 1, Y: 1})
	m.Record(saveButton, platform.NoPosition)
	if m.Len() != 0 {
		t.Fatalf("expected entry to be forgotten, Len() = %d", m.Len())
	}
}

func TestWindowMoved_InvalidatesEntries(t *testing.T) {
	m := New()
	if m.WindowMoved(platform.Point{X: 0, Y: 0}) {
		t.Fatalf("first report on an empty map must not count as a move")
	}
	m.Record(saveButton, platform.Point{X: 20, Y: 30})
	m.Record(fileMenu, platform.Point{X: 5, Y: 5})

	if m.WindowMoved(platform.Point{X: 0, Y: 0}) {
		t.Fatalf("same position must not count as a move")
	}
	if m.Len() != 2 {
		t.Fatalf("entries dropped without a move")
	}

	if !m.WindowMoved(platform.Point{X: 40, Y: 0}) {
		t.Fatalf("expected a move to be reported")
	}
	for _, c := range []criteria.Criteria{saveButton, fileMenu} {
		if got := m.Lookup(c); got != platform.NoPosition {
			t.Fatalf("Lookup(%v) = %v after move, want NoPosition", c, got)
		}
	}
	if m.WindowPosition() != (platform.Point{X: 40, Y: 0}) {
		t.Fatalf("WindowPosition() = %v", m.WindowPosition())
	}
}

func TestWindowMoved_UnanchoredEntriesAreDropped(t *testing.T) {
	m := New()
	m.Record(saveButton, platform.Point{X: 20, Y: 30})
	if !m.WindowMoved(platform.Point{X: 0, Y: 0}) {
		t.Fatalf("entries without a window anchor must be invalidated")
	}
	if m.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", m.Len())
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	st := store.NewFileStore(t.TempDir())
	m := New()
	m.WindowMoved(platform.Point{X: 100, Y: 200})
	m.Record(saveButton, platform.Point{X: 120, Y: 230})
	m.Record(fileMenu, platform.Point{X: 105, Y: 210})

	m.SaveTo(st, "editor", nil)
	got := LoadFrom(st, "editor", nil)

	if !got.LoadedFromFile() {
		t.Fatalf("expected LoadedFromFile() to be true")
	}
	if !reflect.DeepEqual(got.Entries(), m.Entries()) {
		t.Fatalf("entries mismatch:\n got %+v\nwant %+v", got.Entries(), m.Entries())
	}
	if got.WindowPosition() != m.WindowPosition() {
		t.Fatalf("window position = %v, want %v", got.WindowPosition(), m.WindowPosition())
	}
}

func TestPersistence_RoundTripUnnormalizedKey(t *testing.T) {
	st := store.NewFileStore(t.TempDir())
	raw := criteria.Criteria{AutomationID: " save ", ControlType: "Button"}

	m := New()
	m.WindowMoved(platform.Point{X: 1, Y: 1})
	m.Record(raw, platform.Point{X: 5, Y: 5})
	if got := m.Lookup(saveButton); got != (platform.Point{X: 5, Y: 5}) {
		t.Fatalf("normalized lookup = %v, want (5,5)", got)
	}

	m.SaveTo(st, "editor", nil)
	got := LoadFrom(st, "editor", nil)

	if p := got.Lookup(raw); p != (platform.Point{X: 5, Y: 5}) {
		t.Fatalf("after reload Lookup(raw) = %v, want (5,5)", p)
	}
	if got.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", got.Len())
	}

	got.Forget(raw)
	if got.Len() != 0 {
		t.Fatalf("expected Forget to drop the normalized entry, Len() = %d", got.Len())
	}
}

func TestLoadFrom_MissingRecordIsEmpty(t *testing.T) {
	got := LoadFrom(store.NewFileStore(t.TempDir()), "never-saved", nil)
	if got.Len() != 0 || got.LoadedFromFile() || got.WindowPosition().Known() {
		t.Fatalf("expected a cold cache, got %+v", got.Entries())
	}
}

func TestLoadFrom_CorruptRecordIsEmpty(t *testing.T) {
	st := store.NewMemoryStore()
	st.Put("editor", []byte("\x00\x01 definitely not json"))

	got := LoadFrom(st, "editor", nil)
	if got == nil {
		t.Fatalf("LoadFrom returned nil")
	}
	if got.Len() != 0 || got.LoadedFromFile() {
		t.Fatalf("expected a cold cache, got %d entries", got.Len())
	}
	got.Record(saveButton, platform.Point{X: 1, Y: 1})
	if got.Len() != 1 {
		t.Fatalf("cold cache is not usable")
	}
}

type failingStore struct{ saves int }

func (f *failingStore) Load(string) (*store.Snapshot, error) {
	return nil, errors.New("disk on fire")
}

func (f *failingStore) Save(*store.Snapshot) error {
	f.saves++
	return errors.New("disk on fire")
}

func TestSaveTo_SwallowsErrors(t *testing.T) {
	st := &failingStore{}
	m := LoadFrom(st, "editor", nil)
	m.Record(saveButton, platform.Point{X: 1, Y: 1})
	m.SaveTo(st, "editor", nil)
	if st.saves != 1 {
		t.Fatalf("expected one save attempt, got %d", st.saves)
	}
}

func TestLoadFrom_SkipsSentinelEntries(t *testing.T) {
	st := store.NewMemoryStore()
	err := st.Save(&store.Snapshot{
		Identity:       "editor",
		WindowPosition: platform.Point{X: 0, Y: 0},
		Entries: []store.Entry{
			{Criteria: saveButton, Point: platform.NoPosition},
			{Criteria: fileMenu, Point: platform.Point{X: 2, Y: 2}},
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	m := LoadFrom(st, "editor", nil)
	if m.Len() != 1 || m.Lookup(fileMenu) != (platform.Point{X: 2, Y: 2}) {
		t.Fatalf("unexpected entries %+v", m.Entries())
	}
}

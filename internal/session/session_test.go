package session

import (
	"errors"
	"testing"

	"github.com/1broseidon/uifind/internal/criteria"
	"github.com/1broseidon/uifind/internal/lookup"
	"github.com/1broseidon/uifind/internal/platform"
	"github.com/1broseidon/uifind/internal/store"
)

// fakeBackend serves a fixed element tree and resolves points to the smallest
// element containing them.
type fakeBackend struct {
	elements map[platform.WindowID]platform.Element
	children map[platform.WindowID][]platform.WindowID
	focused  []platform.WindowID
	focusErr error
	probes   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		elements: map[platform.WindowID]platform.Element{
			2: {Handle: 2, AutomationID: "toolbar", ControlType: "pane", Bounds: platform.Rect{X: 100, Y: 100, Width: 400, Height: 40}},
			4: {Handle: 4, AutomationID: "save", Name: "Save", ControlType: "button", Bounds: platform.Rect{X: 110, Y: 110, Width: 80, Height: 20}},
		},
		children: map[platform.WindowID][]platform.WindowID{
			1: {2},
			2: {4},
		},
	}
}

func (b *fakeBackend) ElementAtPoint(p platform.Point) (*platform.Element, error) {
	b.probes++
	var best *platform.Element
	for _, el := range b.elements {
		if !el.Bounds.Contains(p) {
			continue
		}
		if best == nil || el.Bounds.Width*el.Bounds.Height < best.Bounds.Width*best.Bounds.Height {
			e := el
			best = &e
		}
	}
	return best, nil
}

func (b *fakeBackend) Element(id platform.WindowID) (platform.Element, error) {
	return b.elements[id], nil
}

func (b *fakeBackend) Children(id platform.WindowID) ([]platform.Element, error) {
	var out []platform.Element
	for _, child := range b.children[id] {
		out = append(out, b.elements[child])
	}
	return out, nil
}

func (b *fakeBackend) TopLevelWindows() ([]platform.Window, error) { return nil, nil }

func (b *fakeBackend) Focus(id platform.WindowID) error {
	if b.focusErr != nil {
		return b.focusErr
	}
	b.focused = append(b.focused, id)
	return nil
}

type countingStore struct {
	store.Store
	saves   int
	saveErr error
}

func (s *countingStore) Save(snap *store.Snapshot) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.Save(snap)
}

func mainWindow(x, y int) platform.Window {
	return platform.Window{ID: 1, AppID: "editor", Title: "Main", Bounds: platform.Rect{X: x, Y: y, Width: 400, Height: 300}}
}

func TestWindowSession_PersistsPositionsAcrossSessions(t *testing.T) {
	backend := newFakeBackend()
	st := store.NewMemoryStore()
	crit := criteria.ByAutomationID("save")

	app := NewApplication(backend, st, Options{})
	w := app.WindowSession(Cached("editor:Main"))
	if err := w.Register(mainWindow(100, 100)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(backend.focused) != 1 || backend.focused[0] != 1 {
		t.Fatalf("expected window 1 focused, got %v", backend.focused)
	}

	res := w.Get(nil, crit, nil, lookup.WithTimeout(0))
	if !res.Found() || res.Path != lookup.PathSearch {
		t.Fatalf("expected search hit, got %+v", res)
	}
	app.Close()

	opt := Cached("editor:Main")
	app2 := NewApplication(backend, st, Options{})
	w2 := app2.WindowSession(opt)
	if !w2.Cache().LoadedFromFile() {
		t.Fatalf("expected map loaded from store")
	}
	if opt.Cached {
		t.Fatalf("expected option switched to non-cached after load")
	}
	if err := w2.Register(mainWindow(100, 100)); err != nil {
		t.Fatalf("register: %v", err)
	}

	probes := backend.probes
	res = w2.Get(nil, crit, nil)
	if !res.Found() || res.Path != lookup.PathPosition {
		t.Fatalf("expected position hit, got %+v", res)
	}
	if backend.probes != probes+1 {
		t.Fatalf("expected one probe, got %d", backend.probes-probes)
	}
	if res.Item.Element().Handle != 4 {
		t.Fatalf("expected handle 4, got %d", res.Item.Element().Handle)
	}
}

func TestWindowSession_MovedWindowClearsLoadedPositions(t *testing.T) {
	backend := newFakeBackend()
	st := store.NewMemoryStore()

	app := NewApplication(backend, st, Options{})
	w := app.WindowSession(Cached("editor:Main"))
	if err := w.Register(mainWindow(100, 100)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if res := w.Get(nil, criteria.ByAutomationID("save"), nil, lookup.WithTimeout(0)); !res.Found() {
		t.Fatalf("expected hit, got %+v", res)
	}
	w.Close()

	w2 := NewApplication(backend, st, Options{}).WindowSession(Cached("editor:Main"))
	if w2.Cache().Len() != 1 {
		t.Fatalf("expected 1 stored entry, got %d", w2.Cache().Len())
	}
	if err := w2.Register(mainWindow(300, 300)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if w2.Cache().Len() != 0 {
		t.Fatalf("expected positions cleared after move, got %d", w2.Cache().Len())
	}
	if got := w2.Cache().WindowPosition(); got != (platform.Point{X: 300, Y: 300}) {
		t.Fatalf("expected window position (300,300), got %v", got)
	}
}

func TestWindow_CloseSavesOnce(t *testing.T) {
	st := &countingStore{Store: store.NewMemoryStore()}
	w := NewApplication(newFakeBackend(), st, Options{}).WindowSession(Cached("editor:Main"))

	for i := 0; i < 3; i++ {
		w.Close()
	}
	if st.saves != 1 {
		t.Fatalf("expected 1 save, got %d", st.saves)
	}
}

func TestWindow_NonCachedNeverSaves(t *testing.T) {
	st := &countingStore{Store: store.NewMemoryStore()}
	app := NewApplication(newFakeBackend(), st, Options{})
	app.WindowSession(&InitializeOption{Identifier: "editor:Main"})
	app.WindowSession(Cached(""))

	app.Close()
	if st.saves != 0 {
		t.Fatalf("expected no saves, got %d", st.saves)
	}
}

func TestApplication_CloseSwallowsSaveErrors(t *testing.T) {
	st := &countingStore{Store: store.NewMemoryStore(), saveErr: errors.New("disk full")}
	app := NewApplication(newFakeBackend(), st, Options{})
	app.WindowSession(Cached("editor:Main"))
	app.ModalWindowSession(Cached("editor:Save As"))

	app.Close()
	if st.saves != 2 {
		t.Fatalf("expected a save attempt per session despite errors, got %d", st.saves)
	}

	app.Close()
	if st.saves != 2 {
		t.Fatalf("expected second close to be a no-op, got %d saves", st.saves)
	}
}

func TestWindow_CloseSavesThroughPositionMap(t *testing.T) {
	st := store.NewMemoryStore()
	w := NewApplication(newFakeBackend(), st, Options{}).WindowSession(Cached("editor:Main"))
	w.LocationChanged(platform.Point{X: 5, Y: 6})
	w.Cache().Record(criteria.ByAutomationID("save"), platform.Point{X: 40, Y: 50})

	w.Close()

	snap, err := st.Load("editor:Main")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Identity != "editor:Main" || snap.WindowPosition != (platform.Point{X: 5, Y: 6}) {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].Point != (platform.Point{X: 40, Y: 50}) {
		t.Fatalf("unexpected entries: %+v", snap.Entries)
	}
}

func TestWindow_GetWithoutRegisteredWindowFails(t *testing.T) {
	w := NewApplication(newFakeBackend(), nil, Options{}).WindowSession(nil)
	res := w.Get(nil, criteria.ByAutomationID("save"), nil, lookup.WithTimeout(0))
	if res.Status != lookup.Failed {
		t.Fatalf("expected failure, got %+v", res)
	}
}

func TestWindow_RegisterFocusError(t *testing.T) {
	backend := newFakeBackend()
	backend.focusErr = errors.New("no window manager")
	w := NewApplication(backend, nil, Options{}).WindowSession(nil)
	if err := w.Register(mainWindow(0, 0)); err == nil {
		t.Fatalf("expected focus error")
	}
}

func TestWindowIdentity(t *testing.T) {
	tests := []struct {
		win  platform.Window
		want string
	}{
		{platform.Window{ID: 7, AppID: "editor", Title: "Main"}, "editor:Main"},
		{platform.Window{ID: 7, Title: " Main "}, "Main"},
		{platform.Window{ID: 7, AppID: "editor"}, "editor"},
		{platform.Window{ID: 7}, "window-7"},
	}
	for _, tt := range tests {
		if got := WindowIdentity(tt.win); got != tt.want {
			t.Fatalf("WindowIdentity(%+v) = %q, want %q", tt.win, got, tt.want)
		}
	}
}

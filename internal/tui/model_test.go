package tui

import (
	"sort"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/uifind/internal/criteria"
	"github.com/1broseidon/uifind/internal/platform"
	"github.com/1broseidon/uifind/internal/store"
)

type fakeCatalog struct {
	snaps   map[string]*store.Snapshot
	deleted []string
}

func newFakeCatalog(snaps ...*store.Snapshot) *fakeCatalog {
	c := &fakeCatalog{snaps: make(map[string]*store.Snapshot)}
	for _, s := range snaps {
		c.snaps[s.Identity] = s
	}
	return c
}

func (c *fakeCatalog) List() ([]string, error) {
	out := make([]string, 0, len(c.snaps))
	for id := range c.snaps {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (c *fakeCatalog) Load(identity string) (*store.Snapshot, error) {
	s, ok := c.snaps[identity]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (c *fakeCatalog) Delete(identity string) error {
	delete(c.snaps, identity)
	c.deleted = append(c.deleted, identity)
	return nil
}

func snapshot(identity string, entries ...store.Entry) *store.Snapshot {
	return &store.Snapshot{
		Identity:       identity,
		WindowPosition: platform.Point{X: 10, Y: 20},
		Entries:        entries,
		SavedAt:        time.Now().Add(-time.Hour),
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelListsSnapshots(t *testing.T) {
	cat := newFakeCatalog(snapshot("Notepad"), snapshot("Editor"))
	m := newModel(cat, "/tmp/positions")

	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("expected 2 items, got %d", got)
	}
	if got := m.selectedIdentity(); got != "Editor" {
		t.Fatalf("expected first sorted identity selected, got %q", got)
	}
}

func TestReloadKeepsSelection(t *testing.T) {
	cat := newFakeCatalog(snapshot("A"), snapshot("B"), snapshot("C"))
	m := newModel(cat, "")
	m.list.Select(2)

	cat.snaps["0"] = snapshot("0")
	updated, _ := m.Update(keyRunes("r"))
	m = updated.(model)

	if got := len(m.list.Items()); got != 4 {
		t.Fatalf("expected 4 items after reload, got %d", got)
	}
	if got := m.selectedIdentity(); got != "C" {
		t.Fatalf("expected selection to stay on C, got %q", got)
	}
}

func TestDeleteKeyOpensConfirmation(t *testing.T) {
	cat := newFakeCatalog(snapshot("Editor"))
	m := newModel(cat, "")

	updated, _ := m.Update(keyRunes("d"))
	m = updated.(model)
	if !m.confirming || m.confirmForm == nil {
		t.Fatalf("expected delete confirmation to open")
	}
	if m.pending != "Editor" {
		t.Fatalf("expected pending identity Editor, got %q", m.pending)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(model)
	if m.confirming {
		t.Fatalf("expected esc to cancel confirmation")
	}
	if len(cat.deleted) != 0 {
		t.Fatalf("expected nothing deleted, got %v", cat.deleted)
	}
}

func TestDeleteKeyIgnoredWhenEmpty(t *testing.T) {
	m := newModel(newFakeCatalog(), "")
	updated, _ := m.Update(keyRunes("d"))
	if updated.(model).confirming {
		t.Fatalf("expected no confirmation without a selection")
	}
}

func TestDeleteIdentity(t *testing.T) {
	cat := newFakeCatalog(snapshot("Editor"), snapshot("Notepad"))
	m := newModel(cat, "")

	cmd := m.deleteIdentity("Editor")
	if len(cat.deleted) != 1 || cat.deleted[0] != "Editor" {
		t.Fatalf("expected Editor deleted, got %v", cat.deleted)
	}
	if got := len(m.list.Items()); got != 1 {
		t.Fatalf("expected 1 item after delete, got %d", got)
	}
	msg, ok := cmd().(statusMsg)
	if !ok || !strings.Contains(msg.text, "Editor") {
		t.Fatalf("expected status message naming Editor, got %#v", msg)
	}
}

func TestStatusMessageLifecycle(t *testing.T) {
	m := newModel(newFakeCatalog(), "")

	updated, cmd := m.Update(statusMsg{text: "reloaded"})
	m = updated.(model)
	if m.statusText != "reloaded" || cmd == nil {
		t.Fatalf("expected status set with clear timer, got %q", m.statusText)
	}

	updated, _ = m.Update(clearStatusMsg{})
	if got := updated.(model).statusText; got != "" {
		t.Fatalf("expected status cleared, got %q", got)
	}
}

func TestQuitKey(t *testing.T) {
	m := newModel(newFakeCatalog(), "")
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestViewShowsSelectedEntries(t *testing.T) {
	cat := newFakeCatalog(snapshot("Editor", store.Entry{
		Criteria: criteria.ByAutomationID("save"),
		Point:    platform.Point{X: 120, Y: 45},
	}))
	m := newModel(cat, "/tmp/positions")

	if m.View() != "" {
		t.Fatalf("expected empty view before the first size message")
	}
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := updated.(model).View()

	for _, want := range []string{"1 windows", "automation_id=save", "(120,45)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q:\n%s", want, view)
		}
	}
}

func TestViewEmptyCatalog(t *testing.T) {
	m := newModel(newFakeCatalog(), "")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if view := updated.(model).View(); !strings.Contains(view, "No remembered positions.") {
		t.Fatalf("expected empty-state message:\n%s", view)
	}
}

func TestRenderDetailTruncates(t *testing.T) {
	var entries []store.Entry
	for i := 0; i < 20; i++ {
		entries = append(entries, store.Entry{
			Criteria: criteria.ByText("item"),
			Point:    platform.Point{X: i, Y: i},
		})
	}
	out := renderDetail(snapshot("Editor", entries...), 10)
	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[9], "more") {
		t.Fatalf("expected truncation marker, got %q", lines[9])
	}
}

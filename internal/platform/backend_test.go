package platform

import (
	"errors"
	"testing"
	"time"
)

func TestNoPosition(t *testing.T) {
	if NoPosition.Known() {
		t.Fatalf("NoPosition must not be known")
	}
	if !(Point{}).Known() {
		t.Fatalf("origin must be a known point")
	}
	if got := NoPosition.String(); got != "(unknown)" {
		t.Fatalf("NoPosition.String() = %q", got)
	}
	if got := (Point{X: 3, Y: -4}).String(); got != "(3,-4)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	if got := r.Center(); got != (Point{X: 60, Y: 45}) {
		t.Fatalf("Center() = %v", got)
	}
	if got := r.Location(); got != (Point{X: 10, Y: 20}) {
		t.Fatalf("Location() = %v", got)
	}
	if !r.Contains(Point{X: 10, Y: 20}) || !r.Contains(Point{X: 109, Y: 69}) {
		t.Fatalf("expected corners inside")
	}
	if r.Contains(Point{X: 110, Y: 20}) || r.Contains(Point{X: 10, Y: 70}) {
		t.Fatalf("expected far edges outside")
	}
	if r.Empty() {
		t.Fatalf("expected non-empty rect")
	}
	if !(Rect{Width: 0, Height: 5}).Empty() {
		t.Fatalf("expected zero-width rect to be empty")
	}
}

type windowsBackend struct {
	Backend
	windows []Window
	err     error
}

func (b windowsBackend) TopLevelWindows() ([]Window, error) { return b.windows, b.err }

// appearingBackend lists its window only after a number of calls.
type appearingBackend struct {
	Backend
	after int
	calls int
}

func (b *appearingBackend) TopLevelWindows() ([]Window, error) {
	b.calls++
	if b.calls <= b.after {
		return nil, nil
	}
	return []Window{{ID: 9, Title: "Save As"}}, nil
}

func TestWaitForWindow(t *testing.T) {
	b := &appearingBackend{after: 2}
	w, err := WaitForWindow(b, "Save", time.Second)
	if err != nil {
		t.Fatalf("WaitForWindow: %v", err)
	}
	if w.ID != 9 || b.calls != 3 {
		t.Fatalf("got window %d after %d calls, want 9 after 3", w.ID, b.calls)
	}

	b = &appearingBackend{after: 1000}
	start := time.Now()
	if _, err := WaitForWindow(b, "Save", 120*time.Millisecond); err == nil {
		t.Fatalf("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Fatalf("returned after %v, before the timeout", elapsed)
	}
}

func TestWaitForWindow_ZeroTimeoutChecksOnce(t *testing.T) {
	b := windowsBackend{windows: []Window{
		{ID: 1, Title: "notes.txt - Editor"},
		{ID: 2, Title: "Terminal"},
	}}

	w, err := WaitForWindow(b, "Editor", 0)
	if err != nil {
		t.Fatalf("WaitForWindow: %v", err)
	}
	if w.ID != 1 {
		t.Fatalf("expected window 1, got %d", w.ID)
	}

	if _, err := WaitForWindow(b, "Browser", 0); err == nil {
		t.Fatalf("expected error for missing window")
	}
	if _, err := WaitForWindow(b, "", 0); err == nil {
		t.Fatalf("expected error for empty title")
	}

	b.err = errors.New("no display")
	if _, err := WaitForWindow(b, "Editor", 0); err == nil {
		t.Fatalf("expected backend error")
	}
}

package platform

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/1broseidon/uifind/internal/poll"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Point is a screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoPosition marks "no known position". Screen coordinates on every supported
// backend fit in 16 bits, so it never equals a real point.
var NoPosition = Point{X: math.MinInt32, Y: math.MinInt32}

// Known reports whether p is a real coordinate.
func (p Point) Known() bool {
	return p != NoPosition
}

func (p Point) String() string {
	if !p.Known() {
		return "(unknown)"
	}
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Location returns the top-left corner.
func (r Rect) Location() Point {
	return Point{X: r.X, Y: r.Y}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Element is a raw handle to a UI element as reported by a backend.
type Element struct {
	Handle       WindowID `json:"handle"`
	AutomationID string   `json:"automation_id"`
	Name         string   `json:"name"`
	ControlType  string   `json:"control_type"`
	ClassName    string   `json:"class_name,omitempty"`
	PID          int      `json:"pid,omitempty"`
	Bounds       Rect     `json:"bounds"`
}

func (e Element) String() string {
	return fmt.Sprintf("element{handle=%d id=%q name=%q type=%q class=%q}",
		e.Handle, e.AutomationID, e.Name, e.ControlType, e.ClassName)
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
}

// Location returns the top-left corner of the window.
func (w Window) Location() Point {
	return w.Bounds.Location()
}

// Backend abstracts accessibility queries across platforms.
type Backend interface {
	// ElementAtPoint returns the deepest element at p, or nil when nothing
	// occupies that point.
	ElementAtPoint(p Point) (*Element, error)
	// Element describes a single element by handle.
	Element(id WindowID) (Element, error)
	// Children lists the direct children of an element.
	Children(id WindowID) ([]Element, error)
	// TopLevelWindows lists normal application windows.
	TopLevelWindows() ([]Window, error)
	// Focus activates and raises a window.
	Focus(id WindowID) error
}

// ParentReporter is implemented by backends that can walk up the element
// tree. Parent returns nil for a top-level element.
type ParentReporter interface {
	Parent(id WindowID) (*Element, error)
}

// WaitForWindow polls the top-level windows until one whose title contains
// substr appears or timeout elapses. A zero timeout checks once.
func WaitForWindow(b Backend, substr string, timeout time.Duration) (Window, error) {
	var found Window
	ok, err := poll.Until(func() (bool, error) {
		windows, err := b.TopLevelWindows()
		if err != nil {
			return false, err
		}
		for _, w := range windows {
			if containsSubstring(w.Title, substr) {
				found = w
				return true, nil
			}
		}
		return false, nil
	}, timeout, poll.DefaultInterval)
	if err != nil {
		return Window{}, err
	}
	if !ok {
		return Window{}, fmt.Errorf("no window found with title containing %q", substr)
	}
	return found, nil
}

func containsSubstring(s, substr string) bool {
	return len(substr) > 0 && strings.Contains(s, substr)
}

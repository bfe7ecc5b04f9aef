// Package item turns raw backend elements into typed UI items.
package item

import (
	"github.com/1broseidon/uifind/internal/platform"
)

// Action describes something done to an item, reported to listeners.
type Action struct {
	Kind   string
	Target platform.Element
}

// ActionListener is notified after actions on items it was attached to.
type ActionListener interface {
	ActionPerformed(Action)
}

// NopListener ignores every action.
type NopListener struct{}

func (NopListener) ActionPerformed(Action) {}

// Item is a UI control found by a lookup.
type Item interface {
	Element() platform.Element
	// Location is the point a later probe should hit: the center of the
	// item's bounds.
	Location() platform.Point
	Bounds() platform.Rect
	Name() string
	ControlType() string
	// CustomType is the registry tag the item was built with, if any.
	CustomType() string
	ActionListener() ActionListener
}

// UIItem is the generic item used when no specialized constructor applies.
type UIItem struct {
	element    platform.Element
	listener   ActionListener
	customType string
}

var _ Item = (*UIItem)(nil)

// NewUIItem wraps el. A nil listener is replaced by NopListener.
func NewUIItem(el platform.Element, l ActionListener) *UIItem {
	if l == nil {
		l = NopListener{}
	}
	return &UIItem{element: el, listener: l}
}

func (i *UIItem) Element() platform.Element      { return i.element }
func (i *UIItem) Location() platform.Point       { return i.element.Bounds.Center() }
func (i *UIItem) Bounds() platform.Rect          { return i.element.Bounds }
func (i *UIItem) Name() string                   { return i.element.Name }
func (i *UIItem) ControlType() string            { return i.element.ControlType }
func (i *UIItem) CustomType() string             { return i.customType }
func (i *UIItem) ActionListener() ActionListener { return i.listener }

func (i *UIItem) String() string {
	return i.element.String()
}

// Window is a top-level window or dialog.
type Window struct {
	*UIItem
}

// Title returns the window title.
func (w *Window) Title() string { return w.element.Name }

// Modal reports whether the window is a dialog.
func (w *Window) Modal() bool { return w.element.ControlType == "dialog" }

// Button is a clickable control.
type Button struct {
	*UIItem
}

// Text returns the button caption.
func (b *Button) Text() string { return b.element.Name }

// TextBox is an editable text control.
type TextBox struct {
	*UIItem
}

// Menu is a menu, menu bar or popup menu.
type Menu struct {
	*UIItem
}

// Pane is a generic container.
type Pane struct {
	*UIItem
}

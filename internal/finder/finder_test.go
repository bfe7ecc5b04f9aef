package finder

import (
	"errors"
	"testing"

	"github.com/1broseidon/uifind/internal/criteria"
	"github.com/1broseidon/uifind/internal/item"
	"github.com/1broseidon/uifind/internal/platform"
)

// treeBackend serves a fixed parent -> children table.
type treeBackend struct {
	children map[platform.WindowID][]platform.Element
	failOn   platform.WindowID
	calls    int
}

func (b *treeBackend) Children(id platform.WindowID) ([]platform.Element, error) {
	b.calls++
	if b.failOn != 0 && id == b.failOn {
		return nil, errors.New("BadWindow")
	}
	return b.children[id], nil
}

func (b *treeBackend) ElementAtPoint(platform.Point) (*platform.Element, error) { return nil, nil }
func (b *treeBackend) Element(platform.WindowID) (platform.Element, error)     { return platform.Element{}, nil }
func (b *treeBackend) TopLevelWindows() ([]platform.Window, error)              { return nil, nil }
func (b *treeBackend) Focus(platform.WindowID) error                            { return nil }

func sampleTree() *treeBackend {
	return &treeBackend{children: map[platform.WindowID][]platform.Element{
		1: {
			{Handle: 2, AutomationID: "toolbar", ControlType: "pane"},
			{Handle: 3, AutomationID: "sidebar", ControlType: "pane"},
		},
		2: {
			{Handle: 4, AutomationID: "save", Name: "Save", ControlType: "button"},
		},
		3: {
			{Handle: 5, AutomationID: "save", Name: "Save draft", ControlType: "button"},
		},
	}}
}

func TestTreeFactory_FindsFirstMatchBreadthFirst(t *testing.T) {
	f := NewTreeFactory(sampleTree(), 1, nil)

	it, err := f.Get(criteria.ByAutomationID("save"), nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if it == nil || it.Element().Handle != 4 {
		t.Fatalf("expected handle 4, got %#v", it)
	}
	if _, ok := it.(*item.Button); !ok {
		t.Fatalf("expected *item.Button, got %T", it)
	}
}

func TestTreeFactory_Scope(t *testing.T) {
	f := NewTreeFactory(sampleTree(), 1, nil)

	it, err := f.Get(criteria.ByAutomationID("save").Within("sidebar"), nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if it == nil || it.Element().Handle != 5 {
		t.Fatalf("expected handle 5 inside sidebar, got %#v", it)
	}

	it, err = f.Get(criteria.ByAutomationID("save").Within("statusbar"), nil)
	if err != nil || it != nil {
		t.Fatalf("expected no match for missing scope, got %v, %v", it, err)
	}
}

func TestTreeFactory_NoMatchReturnsNil(t *testing.T) {
	it, err := NewTreeFactory(sampleTree(), 1, nil).Get(criteria.ByText("Quit"), nil)
	if err != nil || it != nil {
		t.Fatalf("Get() = %v, %v; want nil, nil", it, err)
	}
}

func TestTreeFactory_BackendErrorPropagates(t *testing.T) {
	b := sampleTree()
	b.failOn = 3
	_, err := NewTreeFactory(b, 1, nil).Get(criteria.ByText("Quit"), nil)
	if err == nil {
		t.Fatalf("expected backend error")
	}
}

func TestTreeFactory_MaxNodes(t *testing.T) {
	f := NewTreeFactory(sampleTree(), 1, nil)
	f.MaxNodes = 1
	it, err := f.Get(criteria.ByAutomationID("save"), nil)
	if err != nil || it != nil {
		t.Fatalf("expected search to stop before reaching the button, got %v, %v", it, err)
	}
}

func TestTreeFactory_RejectsEmptyCriteria(t *testing.T) {
	if _, err := NewTreeFactory(sampleTree(), 1, nil).Get(criteria.Criteria{}, nil); err == nil {
		t.Fatalf("expected error for empty criteria")
	}
}

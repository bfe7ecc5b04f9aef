// Package finder searches a window's element tree for items matching
// criteria.
package finder

import (
	"fmt"

	"github.com/1broseidon/uifind/internal/criteria"
	"github.com/1broseidon/uifind/internal/item"
	"github.com/1broseidon/uifind/internal/lookup"
	"github.com/1broseidon/uifind/internal/platform"
)

// DefaultMaxNodes caps how many elements one search visits.
const DefaultMaxNodes = 10000

// TreeFactory walks the subtree under Root breadth-first and returns the first
// element that matches. It implements lookup.Factory.
type TreeFactory struct {
	Backend  platform.Backend
	Root     platform.WindowID
	Registry *item.Registry
	MaxNodes int
}

var _ lookup.Factory = (*TreeFactory)(nil)

// NewTreeFactory searches below root using backend.
func NewTreeFactory(backend platform.Backend, root platform.WindowID, registry *item.Registry) *TreeFactory {
	if registry == nil {
		registry = item.DefaultRegistry()
	}
	return &TreeFactory{
		Backend:  backend,
		Root:     root,
		Registry: registry,
		MaxNodes: DefaultMaxNodes,
	}
}

// Get returns the first match or nil. Backend errors are returned unchanged.
func (f *TreeFactory) Get(c criteria.Criteria, l item.ActionListener) (item.Item, error) {
	if f.Backend == nil {
		return nil, fmt.Errorf("finder: no backend")
	}
	if c.IsZero() {
		return nil, fmt.Errorf("finder: empty criteria")
	}

	root := f.Root
	if c.Scope != "" {
		scope, ok, err := f.find(root, c.IsScope)
		if err != nil || !ok {
			return nil, err
		}
		root = scope.Handle
	}

	el, ok, err := f.find(root, c.AppliesTo)
	if err != nil || !ok {
		return nil, err
	}
	return f.Registry.Create(el, l, c.CustomType)
}

// find visits descendants of root, excluding root itself.
func (f *TreeFactory) find(root platform.WindowID, match func(platform.Element) bool) (platform.Element, bool, error) {
	limit := f.MaxNodes
	if limit <= 0 {
		limit = DefaultMaxNodes
	}

	queue := []platform.WindowID{root}
	seen := map[platform.WindowID]bool{root: true}
	visited := 0

	for len(queue) > 0 && visited < limit {
		id := queue[0]
		queue = queue[1:]

		children, err := f.Backend.Children(id)
		if err != nil {
			return platform.Element{}, false, fmt.Errorf("list children of %d: %w", id, err)
		}
		for _, child := range children {
			if seen[child.Handle] {
				continue
			}
			seen[child.Handle] = true
			visited++
			if match(child) {
				return child, true, nil
			}
			queue = append(queue, child.Handle)
		}
	}
	return platform.Element{}, false, nil
}

package item

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/uifind/internal/platform"
)

// Constructor builds an item from a raw element.
type Constructor func(el platform.Element, l ActionListener) Item

// Registry maps control types and custom type tags to constructors. Build it
// once at startup; it is read-only afterwards and safe for concurrent reads.
type Registry struct {
	byControlType map[string]Constructor
	byCustomType  map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{
		byControlType: make(map[string]Constructor),
		byCustomType:  make(map[string]Constructor),
	}
}

// DefaultRegistry knows the built-in control types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("window", func(el platform.Element, l ActionListener) Item {
		return &Window{UIItem: NewUIItem(el, l)}
	})
	r.Register("dialog", func(el platform.Element, l ActionListener) Item {
		return &Window{UIItem: NewUIItem(el, l)}
	})
	r.Register("button", func(el platform.Element, l ActionListener) Item {
		return &Button{UIItem: NewUIItem(el, l)}
	})
	r.Register("textbox", func(el platform.Element, l ActionListener) Item {
		return &TextBox{UIItem: NewUIItem(el, l)}
	})
	r.Register("menu", func(el platform.Element, l ActionListener) Item {
		return &Menu{UIItem: NewUIItem(el, l)}
	})
	r.Register("pane", func(el platform.Element, l ActionListener) Item {
		return &Pane{UIItem: NewUIItem(el, l)}
	})
	return r
}

// Register sets the constructor for a control type.
func (r *Registry) Register(controlType string, c Constructor) {
	r.byControlType[normalize(controlType)] = c
}

// RegisterCustom sets the constructor for a custom type tag.
func (r *Registry) RegisterCustom(tag string, c Constructor) {
	r.byCustomType[normalize(tag)] = c
}

// IsCustomType reports whether tag names a registered custom item type.
func (r *Registry) IsCustomType(tag string) bool {
	_, ok := r.byCustomType[normalize(tag)]
	return ok
}

// CustomTypes lists the registered custom tags.
func (r *Registry) CustomTypes() []string {
	out := make([]string, 0, len(r.byCustomType))
	for tag := range r.byCustomType {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Create builds an item for el. A non-empty customType must be registered and
// wins over the element's control type; unknown control types fall back to
// UIItem.
func (r *Registry) Create(el platform.Element, l ActionListener, customType string) (Item, error) {
	if tag := normalize(customType); tag != "" {
		c, ok := r.byCustomType[tag]
		if !ok {
			return nil, fmt.Errorf("unknown custom item type %q", customType)
		}
		return withCustomType(c(el, l), tag), nil
	}
	if c, ok := r.byControlType[normalize(el.ControlType)]; ok {
		return c(el, l), nil
	}
	return NewUIItem(el, l), nil
}

// withCustomType stamps the tag on items built on UIItem.
func withCustomType(it Item, tag string) Item {
	type embedsUIItem interface{ base() *UIItem }
	if b, ok := it.(embedsUIItem); ok {
		b.base().customType = tag
	}
	return it
}

func (i *UIItem) base() *UIItem { return i }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Package criteria describes which logical UI control a lookup targets.
//
// A Criteria is a comparable value: conditions live in fixed slots, so the
// order in which they are combined never changes the result, and two criteria
// built separately compare equal with ==. This makes them safe map keys for
// the position cache and stable across process runs.
package criteria

import (
	"strings"

	"github.com/1broseidon/uifind/internal/platform"
)

// Criteria identifies a control by identity and type, never by location.
type Criteria struct {
	AutomationID string `json:"automation_id,omitempty"`
	Name         string `json:"name,omitempty"`
	ControlType  string `json:"control_type,omitempty"`
	ClassName    string `json:"class_name,omitempty"`
	// CustomType selects a custom item constructor from the item registry.
	CustomType string `json:"custom_type,omitempty"`
	// Scope restricts the search to the container whose automation id or
	// name equals it.
	Scope string `json:"scope,omitempty"`
}

func ByAutomationID(id string) Criteria { return Criteria{}.AndAutomationID(id) }
func ByText(name string) Criteria       { return Criteria{}.AndText(name) }
func ByControlType(t string) Criteria   { return Criteria{}.AndControlType(t) }
func ByClassName(class string) Criteria { return Criteria{}.AndClassName(class) }

func (c Criteria) AndAutomationID(id string) Criteria {
	c.AutomationID = strings.TrimSpace(id)
	return c
}

func (c Criteria) AndText(name string) Criteria {
	c.Name = strings.TrimSpace(name)
	return c
}

func (c Criteria) AndControlType(t string) Criteria {
	c.ControlType = normalizeType(t)
	return c
}

func (c Criteria) AndClassName(class string) Criteria {
	c.ClassName = strings.TrimSpace(class)
	return c
}

func (c Criteria) AndCustomType(tag string) Criteria {
	c.CustomType = normalizeType(tag)
	return c
}

func (c Criteria) Within(scope string) Criteria {
	c.Scope = strings.TrimSpace(scope)
	return c
}

// Normalize trims and lower-cases fields the builders would have normalized.
// Use it on values decoded from JSON or flags.
func (c Criteria) Normalize() Criteria {
	return Criteria{}.
		AndAutomationID(c.AutomationID).
		AndText(c.Name).
		AndControlType(c.ControlType).
		AndClassName(c.ClassName).
		AndCustomType(c.CustomType).
		Within(c.Scope)
}

// IsZero reports whether no identifying condition is set. Scope and custom
// type alone do not identify a control.
func (c Criteria) IsZero() bool {
	return c.AutomationID == "" && c.Name == "" && c.ControlType == "" && c.ClassName == ""
}

// AppliesTo reports whether el satisfies every identifying condition.
// Zero criteria apply to nothing.
func (c Criteria) AppliesTo(el platform.Element) bool {
	if c.IsZero() {
		return false
	}
	if c.AutomationID != "" && c.AutomationID != el.AutomationID {
		return false
	}
	if c.Name != "" && c.Name != el.Name {
		return false
	}
	if c.ControlType != "" && normalizeType(c.ControlType) != normalizeType(el.ControlType) {
		return false
	}
	if c.ClassName != "" && c.ClassName != el.ClassName {
		return false
	}
	return true
}

// IsScope reports whether el is the container c's scope names.
func (c Criteria) IsScope(el platform.Element) bool {
	return c.Scope != "" && (el.AutomationID == c.Scope || el.Name == c.Scope)
}

// Key returns a canonical string for c. Equal criteria have equal keys.
func (c Criteria) Key() string {
	var sb strings.Builder
	for i, f := range c.fields() {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(f.name)
		sb.WriteByte('=')
		sb.WriteString(escape(f.value))
	}
	return sb.String()
}

// String renders the set conditions for logs.
func (c Criteria) String() string {
	var parts []string
	for _, f := range c.fields() {
		if f.value == "" {
			continue
		}
		parts = append(parts, f.name+"="+f.value)
	}
	if len(parts) == 0 {
		return "<empty>"
	}
	return strings.Join(parts, " && ")
}

type field struct {
	name  string
	value string
}

// fields returns the slots in their canonical order.
func (c Criteria) fields() []field {
	return []field{
		{"automation_id", c.AutomationID},
		{"name", c.Name},
		{"control_type", c.ControlType},
		{"class_name", c.ClassName},
		{"custom_type", c.CustomType},
		{"scope", c.Scope},
	}
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, `;`, `\;`, `=`, `\=`)

func escape(s string) string {
	return keyEscaper.Replace(s)
}

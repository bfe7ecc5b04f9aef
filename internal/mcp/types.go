package mcp

import "time"

// FindItemInput is the input for the find_item tool.
type FindItemInput struct {
	Window       string `json:"window" jsonschema:"required,Substring of the title of the top-level window to search in"`
	AutomationID string `json:"automation_id,omitempty" jsonschema:"Automation id of the item (WM_WINDOW_ROLE on X11)"`
	Name         string `json:"name,omitempty" jsonschema:"Exact name (title) of the item"`
	ControlType  string `json:"control_type,omitempty" jsonschema:"Control type of the item (e.g. button, pane, dialog)"`
	ClassName    string `json:"class_name,omitempty" jsonschema:"WM_CLASS class of the item"`
	CustomType   string `json:"custom_type,omitempty" jsonschema:"Registered custom item type used to build the result"`
	Scope        string `json:"scope,omitempty" jsonschema:"Automation id or name of a container to search inside"`
	WaitMs       int    `json:"wait_ms,omitempty" jsonschema:"How long to wait for the window to appear, in milliseconds (default: 0)"`
	TimeoutMs    *int   `json:"timeout_ms,omitempty" jsonschema:"Search timeout in milliseconds (default: search_timeout from config). 0 searches once."`
}

// ItemInfo describes a found item.
type ItemInfo struct {
	Handle       uint32 `json:"handle"`
	AutomationID string `json:"automation_id"`
	Name         string `json:"name"`
	ControlType  string `json:"control_type"`
	ClassName    string `json:"class_name,omitempty"`
	CustomType   string `json:"custom_type,omitempty"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// FindItemOutput is the output for the find_item tool.
type FindItemOutput struct {
	Found    bool      `json:"found"`
	Path     string    `json:"path"`
	Window   string    `json:"window"`
	Criteria string    `json:"criteria"`
	Item     *ItemInfo `json:"item,omitempty"`
}

// ProbePointInput is the input for the probe_point tool.
type ProbePointInput struct {
	X int `json:"x" jsonschema:"required,Screen X coordinate"`
	Y int `json:"y" jsonschema:"required,Screen Y coordinate"`
}

// ProbePointOutput is the output for the probe_point tool.
type ProbePointOutput struct {
	Found   bool      `json:"found"`
	Element *ItemInfo `json:"element,omitempty"`
}

// ListCacheInput is the input for the list_cache tool.
type ListCacheInput struct{}

// CachedWindow summarizes one persisted position map.
type CachedWindow struct {
	Identity       string    `json:"identity"`
	Entries        int       `json:"entries"`
	WindowPosition string    `json:"window_position"`
	SavedAtUTC     time.Time `json:"saved_at_utc"`
	Open           bool      `json:"open"`
}

// ListCacheOutput is the output for the list_cache tool.
type ListCacheOutput struct {
	Windows []CachedWindow `json:"windows"`
}

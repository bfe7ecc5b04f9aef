//go:build linux

package platform

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/1broseidon/uifind/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var (
	_ Backend        = (*LinuxBackend)(nil)
	_ ParentReporter = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11
// connection. An empty display uses $DISPLAY.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnectionDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// ElementAtPoint returns the deepest window under p.
func (b *LinuxBackend) ElementAtPoint(p Point) (*Element, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	// A remembered point can fall off-screen after a monitor change.
	if !p.Known() || !conn.PointOnScreen(p.X, p.Y) {
		return nil, nil
	}

	win, err := conn.WindowAtPoint(p.X, p.Y)
	if err != nil {
		return nil, err
	}
	if win == 0 {
		return nil, nil
	}

	el, err := b.Element(WindowID(win))
	if err != nil {
		return nil, err
	}
	return &el, nil
}

// Element describes a single window.
func (b *LinuxBackend) Element(id WindowID) (Element, error) {
	conn, err := b.connection()
	if err != nil {
		return Element{}, err
	}

	geom, err := conn.WindowGeometry(xproto.Window(id))
	if err != nil {
		return Element{}, err
	}
	props := conn.WindowProperties(xproto.Window(id))

	automationID := props.Role
	if automationID == "" {
		automationID = strconv.FormatUint(uint64(id), 10)
	}

	return Element{
		Handle:       id,
		AutomationID: automationID,
		Name:         props.Name,
		ControlType:  controlTypeFromWindowTypes(props.Types),
		ClassName:    props.Class,
		PID:          props.PID,
		Bounds: Rect{
			X:      geom.X,
			Y:      geom.Y,
			Width:  geom.Width,
			Height: geom.Height,
		},
	}, nil
}

// Children lists the mapped child windows of id.
func (b *LinuxBackend) Children(id WindowID) ([]Element, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	children, err := conn.ChildWindows(xproto.Window(id))
	if err != nil {
		return nil, err
	}

	out := make([]Element, 0, len(children))
	for _, child := range children {
		el, err := b.Element(WindowID(child))
		if err != nil {
			// Destroyed while walking; the caller retries the search anyway.
			continue
		}
		out = append(out, el)
	}
	return out, nil
}

// Parent describes the parent of id, or returns nil when id is a child of the
// root window.
func (b *LinuxBackend) Parent(id WindowID) (*Element, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	parent, err := conn.ParentWindow(xproto.Window(id))
	if err != nil {
		return nil, err
	}
	if parent == 0 || parent == conn.Root {
		return nil, nil
	}

	el, err := b.Element(WindowID(parent))
	if err != nil {
		return nil, err
	}
	return &el, nil
}

// TopLevelWindows lists normal client windows from the EWMH client list.
func (b *LinuxBackend) TopLevelWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientWindows()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		if !conn.IsNormalWindow(windowID) {
			continue
		}
		geom, err := conn.WindowGeometry(windowID)
		if err != nil {
			continue
		}
		props := conn.WindowProperties(windowID)
		windows = append(windows, Window{
			ID:    WindowID(windowID),
			PID:   props.PID,
			AppID: props.Class,
			Title: props.Name,
			Bounds: Rect{
				X:      geom.X,
				Y:      geom.Y,
				Width:  geom.Width,
				Height: geom.Height,
			},
		})
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})
	return windows, nil
}

// ActiveWindow returns the window that currently holds input focus.
func (b *LinuxBackend) ActiveWindow() (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}

	windowID, err := conn.GetActiveWindow()
	if err != nil {
		return Window{}, fmt.Errorf("get active window: %w", err)
	}
	if windowID == 0 {
		return Window{}, fmt.Errorf("no active window")
	}
	geom, err := conn.WindowGeometry(windowID)
	if err != nil {
		return Window{}, err
	}
	props := conn.WindowProperties(windowID)
	return Window{
		ID:    WindowID(windowID),
		PID:   props.PID,
		AppID: props.Class,
		Title: props.Name,
		Bounds: Rect{
			X:      geom.X,
			Y:      geom.Y,
			Width:  geom.Width,
			Height: geom.Height,
		},
	}, nil
}

// Focus activates and raises a window.
func (b *LinuxBackend) Focus(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusWindow(uint32(id))
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

// controlTypeFromWindowTypes maps _NET_WM_WINDOW_TYPE values to control types.
// Windows without a type are plain panes inside their parent.
func controlTypeFromWindowTypes(types []string) string {
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return "window"
		case "_NET_WM_WINDOW_TYPE_DIALOG":
			return "dialog"
		case "_NET_WM_WINDOW_TYPE_MENU", "_NET_WM_WINDOW_TYPE_DROPDOWN_MENU", "_NET_WM_WINDOW_TYPE_POPUP_MENU":
			return "menu"
		case "_NET_WM_WINDOW_TYPE_TOOLBAR":
			return "toolbar"
		case "_NET_WM_WINDOW_TYPE_UTILITY":
			return "pane"
		case "_NET_WM_WINDOW_TYPE_TOOLTIP":
			return "tooltip"
		case "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return "notification"
		case "_NET_WM_WINDOW_TYPE_SPLASH":
			return "splash"
		case "_NET_WM_WINDOW_TYPE_DOCK":
			return "dock"
		}
	}
	return "pane"
}

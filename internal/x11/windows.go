package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Geometry is a window rectangle in root coordinates.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Properties holds the identifying properties of a window.
type Properties struct {
	Name  string
	Class string
	Role  string
	Types []string
	PID   int
}

// WindowAtPoint returns the deepest mapped window containing the root
// coordinate (x, y). It returns 0 when only the root window is there.
func (c *Connection) WindowAtPoint(x, y int) (xproto.Window, error) {
	conn := c.XUtil.Conn()
	current := c.Root
	for depth := 0; depth < maxTreeDepth; depth++ {
		reply, err := xproto.TranslateCoordinates(conn, c.Root, current, int16(x), int16(y)).Reply()
		if err != nil {
			return 0, fmt.Errorf("translate coordinates (%d,%d): %w", x, y, err)
		}
		if reply.Child == 0 {
			break
		}
		current = reply.Child
	}
	if current == c.Root {
		return 0, nil
	}
	return current, nil
}

// WindowGeometry returns the window rectangle translated to root coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	conn := c.XUtil.Conn()
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("get geometry of window %d: %w", windowID, err)
	}

	translate, err := xproto.TranslateCoordinates(conn, windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("translate window %d: %w", windowID, err)
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// ChildWindows returns the mapped children of a window in stacking order.
func (c *Connection) ChildWindows(windowID xproto.Window) ([]xproto.Window, error) {
	conn := c.XUtil.Conn()
	tree, err := xproto.QueryTree(conn, windowID).Reply()
	if err != nil {
		return nil, fmt.Errorf("query tree of window %d: %w", windowID, err)
	}

	out := make([]xproto.Window, 0, len(tree.Children))
	for _, child := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(conn, child).Reply()
		if err != nil {
			// Window vanished between QueryTree and the attribute request.
			continue
		}
		if attrs.MapState != xproto.MapStateViewable {
			continue
		}
		out = append(out, child)
	}
	return out, nil
}

// ParentWindow returns the parent of a window. The root window has parent 0.
func (c *Connection) ParentWindow(windowID xproto.Window) (xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return 0, fmt.Errorf("query tree of window %d: %w", windowID, err)
	}
	return tree.Parent, nil
}

// WindowProperties reads the EWMH/ICCCM properties used to identify a window.
// Missing properties are left empty.
func (c *Connection) WindowProperties(windowID xproto.Window) Properties {
	var props Properties

	if name, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		props.Name = strings.TrimSpace(name)
	}
	if props.Name == "" {
		if name, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
			props.Name = strings.TrimSpace(name)
		}
	}
	if wmClass, err := icccm.WmClassGet(c.XUtil, windowID); err == nil {
		props.Class = strings.TrimSpace(wmClass.Class)
	}
	if role, err := xprop.PropValStr(xprop.GetProperty(c.XUtil, windowID, "WM_WINDOW_ROLE")); err == nil {
		props.Role = strings.TrimSpace(role)
	}
	if types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID); err == nil {
		props.Types = types
	}
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		props.PID = int(pid)
	}
	return props
}

// ClientWindows returns the EWMH client list.
func (c *Connection) ClientWindows() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" || t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// maxTreeDepth bounds descent through nested windows.
const maxTreeDepth = 64

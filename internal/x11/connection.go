package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection holds the X11 connection used for element queries.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnectionDisplay connects to the given display. An empty name falls
// back to $DISPLAY.
func NewConnectionDisplay(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}
	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Close disconnects from the X server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// GetActiveWindow returns the window named by _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// FocusWindow asks the window manager to activate and raise windowID.
//
// The client message is built by hand: ewmh.ActiveWindowReq panics on this
// xgbutil version (uint vs int type assertion).
func (c *Connection) FocusWindow(windowID uint32) error {
	atom, err := xprop.Atm(c.XUtil, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	// Source 2 is a pager; l[2] is the requester's currently active window.
	const sourcePager = 2
	current, _ := c.GetActiveWindow()
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(windowID),
		Type:   atom,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			sourcePager, uint32(xproto.TimeCurrentTime), uint32(current), 0, 0,
		}),
	}

	mask := xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify
	if err := xproto.SendEventChecked(c.XUtil.Conn(), false, c.Root, uint32(mask), string(ev.Bytes())).Check(); err != nil {
		return fmt.Errorf("failed to activate window %d: %w", windowID, err)
	}
	return nil
}

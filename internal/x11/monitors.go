package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the screen point (x, y) lies on m.
func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// PointOnScreen reports whether (x, y) is visible on any monitor. When RandR
// is unavailable every point inside the root window counts.
func (c *Connection) PointOnScreen(x, y int) bool {
	monitors, err := c.GetMonitors()
	if err != nil || len(monitors) == 0 {
		geom, gerr := c.WindowGeometry(c.Root)
		if gerr != nil {
			return true
		}
		return x >= 0 && y >= 0 && x < geom.Width && y < geom.Height
	}
	return OnAnyMonitor(monitors, x, y)
}

// OnAnyMonitor reports whether (x, y) lies on one of monitors.
func OnAnyMonitor(monitors []Monitor, x, y int) bool {
	for _, m := range monitors {
		if m.Contains(x, y) {
			return true
		}
	}
	return false
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/1broseidon/uifind/internal/platform"
	"github.com/1broseidon/uifind/internal/store"
)

type foundItem struct {
	Window   string           `json:"window"`
	Path     string           `json:"path"`
	Elapsed  time.Duration    `json:"elapsed_ns"`
	Element  platform.Element `json:"element"`
	Custom   string           `json:"custom_type,omitempty"`
	Location platform.Point   `json:"location"`
}

// isTerminal reports whether f is attached to a terminal. Pipes get
// tab-separated output without headers.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func writeJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printFoundItem(w io.Writer, f foundItem, tty bool) {
	if !tty {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", f.Path, elementFields(f.Element), f.Location.X, f.Location.Y)
		return
	}
	fmt.Fprintf(w, "Window:   %s\n", f.Window)
	fmt.Fprintf(w, "Found by: %s (%s)\n", f.Path, f.Elapsed.Round(time.Millisecond))
	printElement(w, f.Element, true)
	if f.Custom != "" {
		fmt.Fprintf(w, "Custom:   %s\n", f.Custom)
	}
	fmt.Fprintf(w, "Location: %s\n", f.Location)
}

func printElement(w io.Writer, el platform.Element, tty bool) {
	if !tty {
		fmt.Fprintln(w, elementFields(el))
		return
	}
	fmt.Fprintf(w, "Handle:   0x%x\n", uint32(el.Handle))
	fmt.Fprintf(w, "Id:       %s\n", el.AutomationID)
	fmt.Fprintf(w, "Name:     %s\n", el.Name)
	fmt.Fprintf(w, "Type:     %s\n", el.ControlType)
	if el.ClassName != "" {
		fmt.Fprintf(w, "Class:    %s\n", el.ClassName)
	}
	fmt.Fprintf(w, "Bounds:   %dx%d+%d+%d\n", el.Bounds.Width, el.Bounds.Height, el.Bounds.X, el.Bounds.Y)
}

func elementFields(el platform.Element) string {
	return strings.Join([]string{
		fmt.Sprintf("0x%x", uint32(el.Handle)),
		el.AutomationID,
		el.Name,
		el.ControlType,
		el.ClassName,
	}, "\t")
}

func printSnapshotList(w io.Writer, snaps []*store.Snapshot, tty bool) {
	if !tty {
		for _, s := range snaps {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.Identity, len(s.Entries), s.WindowPosition, s.SavedAt.Format(time.RFC3339))
		}
		return
	}

	width := len("WINDOW")
	for _, s := range snaps {
		if len(s.Identity) > width {
			width = len(s.Identity)
		}
	}
	fmt.Fprintf(w, "%-*s  %7s  %-12s  %s\n", width, "WINDOW", "ENTRIES", "POSITION", "SAVED")
	for _, s := range snaps {
		fmt.Fprintf(w, "%-*s  %7d  %-12s  %s\n", width, s.Identity, len(s.Entries), s.WindowPosition, humanize.Time(s.SavedAt))
	}
}

func printSnapshot(w io.Writer, snap *store.Snapshot, tty bool) {
	if !tty {
		for _, e := range snap.Entries {
			fmt.Fprintf(w, "%s\t%d\t%d\n", e.Criteria, e.Point.X, e.Point.Y)
		}
		return
	}
	fmt.Fprintf(w, "Window:   %s\n", snap.Identity)
	fmt.Fprintf(w, "Position: %s\n", snap.WindowPosition)
	fmt.Fprintf(w, "Saved:    %s (%s)\n", snap.SavedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(snap.SavedAt))
	fmt.Fprintf(w, "Entries:  %d\n", len(snap.Entries))
	for _, e := range snap.Entries {
		fmt.Fprintf(w, "  %-12s %s\n", e.Point, e.Criteria)
	}
}

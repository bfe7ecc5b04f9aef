// Package tui is an interactive browser for remembered item positions.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/uifind/internal/store"
)

// Catalog is the position store the browser reads and prunes.
type Catalog interface {
	List() ([]string, error)
	Load(identity string) (*store.Snapshot, error)
	Delete(identity string) error
}

// Run opens the browser and blocks until the user quits.
func Run(catalog Catalog, dir string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("cache browse requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	m := newModel(catalog, dir)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("cache browser: %w", err)
	}
	return nil
}

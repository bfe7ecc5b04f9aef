package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/1broseidon/uifind/internal/store"
)

// windowItem implements list.Item for one persisted position map.
type windowItem struct {
	snap *store.Snapshot
}

func (i windowItem) Title() string { return i.snap.Identity }

func (i windowItem) Description() string {
	return fmt.Sprintf("%d entries · saved %s", len(i.snap.Entries), humanize.Time(i.snap.SavedAt))
}

func (i windowItem) FilterValue() string { return i.snap.Identity }

// statusMsg shows a transient message in the status bar.
type statusMsg struct {
	text string
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

// model is the root bubbletea model for the cache browser.
type model struct {
	catalog Catalog
	dir     string
	list    list.Model

	// Delete confirmation
	confirming    bool
	confirmForm   *huh.Form
	confirmDelete *bool
	pending       string

	statusText string
	loadErrors int

	width  int
	height int
}

func newModel(catalog Catalog, dir string) model {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	m := model{catalog: catalog, dir: dir, list: l}
	m.reload()
	return m
}

// reload re-reads every snapshot from the catalog, keeping the selection when
// the selected window still exists.
func (m *model) reload() {
	selected := m.selectedIdentity()

	identities, err := m.catalog.List()
	if err != nil {
		m.statusText = err.Error()
		m.list.SetItems(nil)
		return
	}

	items := make([]list.Item, 0, len(identities))
	m.loadErrors = 0
	index := 0
	for _, identity := range identities {
		snap, err := m.catalog.Load(identity)
		if err != nil {
			m.loadErrors++
			continue
		}
		if identity == selected {
			index = len(items)
		}
		items = append(items, windowItem{snap: snap})
	}
	m.list.SetItems(items)
	m.list.Select(index)
}

func (m model) selectedIdentity() string {
	snap := m.selectedSnapshot()
	if snap == nil {
		return ""
	}
	return snap.Identity
}

func (m model) selectedSnapshot() *store.Snapshot {
	item, ok := m.list.SelectedItem().(windowItem)
	if !ok {
		return nil
	}
	return item.snap
}

// deleteIdentity removes one window's positions and refreshes the list.
func (m *model) deleteIdentity(identity string) tea.Cmd {
	text := "cleared " + identity
	if err := m.catalog.Delete(identity); err != nil {
		text = err.Error()
	}
	m.reload()
	return func() tea.Msg { return statusMsg{text: text} }
}

func (m *model) startConfirm(identity string) tea.Cmd {
	m.pending = identity
	m.confirmDelete = new(bool)
	m.confirming = true
	m.confirmForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Forget remembered positions for %q?", identity)).
				Affirmative("Forget").
				Negative("Keep").
				Value(m.confirmDelete),
		),
	)
	return m.confirmForm.Init()
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.confirming {
		return m.updateConfirm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()
		return m, nil

	case statusMsg:
		m.statusText = msg.text
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusText = ""
		return m, nil

	case tea.KeyMsg:
		// Keys go to the filter input while the user is typing.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.reload()
			return m, func() tea.Msg { return statusMsg{text: "reloaded"} }
		case "d", "delete":
			if identity := m.selectedIdentity(); identity != "" {
				return m, m.startConfirm(identity)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.confirming = false
			m.confirmForm = nil
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()
	}

	form, cmd := m.confirmForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirmForm = f
	}

	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.confirming = false
		m.confirmForm = nil
		if m.confirmDelete != nil && *m.confirmDelete {
			return m, m.deleteIdentity(m.pending)
		}
		return m, nil
	case huh.StateAborted:
		m.confirming = false
		m.confirmForm = nil
		return m, nil
	}
	return m, cmd
}

func (m *model) updateListSize() {
	// Status bar and help bar take one line each.
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	m.list.SetSize(m.sidebarWidth(), h)
}

func (m model) sidebarWidth() int {
	// Sidebar takes ~40% of width, min 24, max 48
	sw := m.width * 40 / 100
	if sw < 24 {
		sw = 24
	}
	if sw > 48 {
		sw = 48
	}
	return sw
}

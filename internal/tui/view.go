package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/1broseidon/uifind/internal/store"
)

var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	pointStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
)

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.dir, len(m.list.Items()), m.loadErrors, m.statusText, m.width)
	helpBar := renderHelpBar(m.confirming, m.width)

	contentHeight := m.height - lipgloss.Height(statusBar) - lipgloss.Height(helpBar)
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case m.confirming && m.confirmForm != nil:
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(contentHeight).
			Padding(1, 2).
			Render(m.confirmForm.View())
	case len(m.list.Items()) == 0:
		content = emptyStyle.Width(m.width).Height(contentHeight).Render("No remembered positions.")
	default:
		sidebar := lipgloss.NewStyle().Width(m.sidebarWidth()).Render(m.list.View())
		detailWidth := m.width - m.sidebarWidth() - 1
		detail := lipgloss.NewStyle().
			Width(detailWidth).
			Height(contentHeight).
			PaddingLeft(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("238")).
			Render(renderDetail(m.selectedSnapshot(), contentHeight))
		content = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, detail)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		content,
		helpBar,
	)
}

// renderDetail lists a snapshot's remembered item positions, truncated to
// height lines.
func renderDetail(snap *store.Snapshot, height int) string {
	if snap == nil {
		return ""
	}

	lines := []string{
		detailTitleStyle.Render(snap.Identity),
		"",
		labelStyle.Render("window at ") + snap.WindowPosition.String(),
		labelStyle.Render("saved     ") + snap.SavedAt.Local().Format("2006-01-02 15:04:05") +
			labelStyle.Render(" ("+humanize.Time(snap.SavedAt)+")"),
		"",
	}
	if len(snap.Entries) == 0 {
		lines = append(lines, labelStyle.Render("no item positions"))
	}
	for _, e := range snap.Entries {
		lines = append(lines, fmt.Sprintf("%s  %s", pointStyle.Render(fmt.Sprintf("%-12s", e.Point)), e.Criteria))
	}

	if height > 0 && len(lines) > height {
		hidden := len(lines) - height + 1
		lines = append(lines[:height-1], labelStyle.Render(fmt.Sprintf("… %d more", hidden)))
	}
	return strings.Join(lines, "\n")
}

func renderStatusBar(dir string, count, loadErrors int, status string, width int) string {
	parts := []string{fmt.Sprintf("%d windows", count), dir}
	if loadErrors > 0 {
		parts = append(parts, fmt.Sprintf("%d unreadable", loadErrors))
	}
	if status != "" {
		parts = append(parts, status)
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(strings.Join(parts, "  "))
}

func renderHelpBar(confirming bool, width int) string {
	help := "↑/↓: select  /: filter  d: forget  r: reload  q/ctrl-c: quit"
	if confirming {
		help = "←/→: choose  enter: confirm  esc: cancel"
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

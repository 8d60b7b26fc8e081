package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	l := m.layout()

	// Header
	header := titleStyle.Render(" goglobe ─ terminal globe viewer ")
	header = lipgloss.NewStyle().Width(l.contentW).Padding(0).Render(header)

	// Side column: file list or inspect popup
	var side string
	switch {
	case m.showSidebar:
		side = lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
	case m.inspectPopup != "":
		box := boxStyle.Width(popupWidth - 2).Render(m.inspectPopup)
		side = lipgloss.Place(popupWidth, l.contentH, lipgloss.Left, lipgloss.Center, box)
	}

	var pane string
	switch {
	case m.showHops:
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 2
		}
		maxW := min(l.paneW, max(32, colW+4))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(max(2, min(l.paneH-4, 20)))
		box := boxStyle.Width(maxW - 2).Render(m.tbl.View())
		pane = lipgloss.Place(l.paneW, l.paneH, lipgloss.Center, lipgloss.Center, box)
	case m.pasteMode:
		m.ta.SetWidth(l.paneW)
		m.ta.SetHeight(min(l.paneH, 12))
		pane = lipgloss.NewStyle().Width(l.paneW).Height(l.paneH).Render(m.ta.View())
	default:
		pane = m.renderGlobe(l)
	}

	body := pane
	if side != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, " ", pane)
	}

	footer := lipgloss.JoinVertical(lipgloss.Left, m.renderStatus(l.contentW), m.renderHelp())
	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(l.contentW).Height(m.height).MaxHeight(m.height).Render(ui)
}

// renderStatus is the status text with the hover readout pinned right.
func (m Model) renderStatus(width int) string {
	status := dimStyle.Render(" " + m.status + " ")
	coords := ""
	if m.hoverHasGeo {
		coords = dimStyle.Render(fmt.Sprintf("  lat=%.4f lon=%.4f  ", m.hoverLat, m.hoverLon))
	}
	spacer := max(0, width-lipgloss.Width(status)-lipgloss.Width(coords))
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(status + strings.Repeat(" ", spacer) + coords)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"drag/↑↓←→ rotate",
		"wheel/+- zoom",
		"space spin",
		"Tab files",
		"p paste",
		"a hops",
		"i inspect",
		"1/2/l layers",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}

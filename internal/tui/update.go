package tui

import (
	"fmt"
	"strings"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"goglobe/internal/feed"
	"goglobe/internal/geom"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.l.SetSize(sidebarWidth-2, m.layout().contentH-2)
		m.redraw()
	case tickMsg:
		if m.viewer.AutoRotate(m.cfg.AutoRotateSpeed) {
			m.redraw()
		}
		return m, tick(m.cfg.FrameInterval)
	case feedMsg:
		if msg.gen != m.feedGen {
			return m, nil
		}
		m.lastUpdate = msg.update.At
		m.setHops(msg.update.Apply(m.hops))
		m.status = m.pathSummary()
		return m, m.waitForFeed()
	case feedDoneMsg:
		if msg.gen != m.feedGen {
			return m, nil
		}
		m.stopFeed()
		if msg.err != nil {
			// keep showing the last good path
			m.status = "feed error: " + msg.err.Error()
		} else {
			m.status = m.pathSummary() + "  (feed complete)"
		}
	case fileLoadedMsg:
		if msg.path != m.selPath {
			return m, nil
		}
		if msg.err != nil {
			m.status = "load error: " + msg.err.Error()
			return m, nil
		}
		m.lastUpdate = time.Now()
		m.setHops(msg.hops)
		m.status = "loaded " + displayName(msg.path) + "  " + m.pathSummary()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// If list is visible and filtering, send keys to list and ignore global commands
	if m.showSidebar && m.l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	if m.pasteMode {
		switch msg.String() {
		case "esc":
			m.pasteMode = false
			m.ta.Blur()
			m.status = "view mode"
			return m, nil
		case "ctrl+s":
			m.plotPasted()
			return m, nil
		}
		var cmd tea.Cmd
		m.ta, cmd = m.ta.Update(msg)
		return m, cmd
	}
	if m.showHops {
		switch msg.String() {
		case "esc", "a":
			m.showHops = false
			m.redraw()
			return m, nil
		case "ctrl+c", "q":
			m.stopFeed()
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	}

	step := m.cfg.KeyStepPx
	switch msg.String() {
	case "ctrl+c", "q":
		m.stopFeed()
		return m, tea.Quit
	case "esc":
		m.inspectPopup = ""
	case "1":
		m.layers.Targets = !m.layers.Targets
		m.status = fmt.Sprintf("targets: %v", m.layers.Targets)
	case "2":
		m.layers.Lines = !m.layers.Lines
		m.status = fmt.Sprintf("lines: %v", m.layers.Lines)
	case "l":
		all := m.layers.Targets && m.layers.Lines
		m.layers.Targets, m.layers.Lines = !all, !all
		m.status = fmt.Sprintf("layers: targets=%v lines=%v", m.layers.Targets, m.layers.Lines)
	case "+", "=":
		m.zoomBy(-m.cfg.WheelStep)
	case "-", "_":
		m.zoomBy(m.cfg.WheelStep)
	case " ":
		m.viewer.SetAutoRotating(!m.viewer.AutoRotating())
		m.status = fmt.Sprintf("auto-rotate: %v", m.viewer.AutoRotating())
	case "left":
		m.viewer.Rotate(-step, 0)
	case "right":
		m.viewer.Rotate(step, 0)
	case "up":
		// the file list owns up/down while it is open
		if !m.showSidebar {
			m.viewer.Rotate(0, -step)
		}
	case "down":
		if !m.showSidebar {
			m.viewer.Rotate(0, step)
		}
	case "tab":
		m.showSidebar = !m.showSidebar
		if m.showSidebar {
			m.refreshDir()
			m.l.SetSize(sidebarWidth-2, m.layout().contentH-2)
		}
	case "p":
		m.pasteMode = true
		m.ta.SetValue("")
		m.ta.Focus()
		m.status = "paste mode"
		return m, textarea.Blink
	case "h":
		m.helpVisible = !m.helpVisible
	case "a":
		m.showHops = true
		m.refreshHopTable()
	case "i":
		m.inspect()
	case "enter":
		if m.showSidebar {
			if it, ok := m.l.SelectedItem().(fileItem); ok {
				cmd := m.loadPath(it.path)
				m.redraw()
				return m, cmd
			}
		}
	}
	m.redraw()
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	l := m.layout()
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.zoomBy(-m.cfg.WheelStep)
	case msg.Button == tea.MouseButtonWheelDown:
		m.zoomBy(m.cfg.WheelStep)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if _, _, ok := l.globeCell(msg.X, msg.Y); ok && !m.showHops && !m.pasteMode {
			m.viewer.BeginDrag()
			m.lastMouseX, m.lastMouseY = msg.X, msg.Y
		}
	case msg.Action == tea.MouseActionRelease:
		m.viewer.EndDrag()
	case msg.Action == tea.MouseActionMotion && m.viewer.Dragging():
		dx := float64(msg.X-m.lastMouseX) * m.cfg.CellWidthPx
		dy := float64(msg.Y-m.lastMouseY) * m.cfg.CellHeightPx
		m.lastMouseX, m.lastMouseY = msg.X, msg.Y
		if dx != 0 || dy != 0 {
			m.viewer.Rotate(dx, dy)
			m.redraw()
		}
	}
	m.hoverAt(msg.X, msg.Y)
}

// zoomBy moves the camera, accumulating like a scroll wheel within the
// viewer's zoom range.
func (m *Model) zoomBy(delta float64) {
	lo, hi := m.viewer.ZoomRange()
	m.distance = min(max(m.distance+delta, lo), hi)
	m.viewer.Zoom(m.distance)
	m.status = fmt.Sprintf("camera distance: %.0f", m.viewer.Camera().Z)
	m.redraw()
}

func (m *Model) plotPasted() {
	text := strings.TrimSpace(m.ta.Value())
	if text == "" {
		m.status = "paste: empty"
		return
	}
	d, err := geom.ParseText(text)
	if err != nil {
		m.status = "paste error: " + err.Error()
		return
	}
	m.startFeed(nil)
	m.selPath = ""
	m.lastUpdate = time.Now()
	m.setHops(feed.FromRecords(d.Path()))
	m.pasteMode = false
	m.ta.Blur()
	m.status = "plotted " + displayName("") + "  " + m.pathSummary()
}

func (m *Model) inspect() {
	h, km, ok := m.inspectNearest()
	if !ok {
		m.inspectPopup = ""
		m.status = "no located hop to inspect"
		return
	}
	lines := []string{
		fmt.Sprintf("hop %d", h.Number),
		"ip:       " + orNA(h.IP),
		"host:     " + orNA(h.Host),
		"rtt:      " + orNA(h.RTT) + " ms",
		"location: " + orNA(h.Location),
		"coords:   " + h.Position(),
		"from view center: " + formatKm(km),
	}
	m.inspectPopup = strings.Join(lines, "\n")
	m.status = "inspect: esc to close"
}

func (m Model) pathSummary() string {
	located := len(feed.Points(m.hops))
	s := fmt.Sprintf("%d hops, %d located", len(m.hops), located)
	if located > 1 {
		s += ", " + formatKm(feed.PathLength(feed.Points(m.hops)))
	}
	if !m.lastUpdate.IsZero() {
		s += ", updated " + humanize.Time(m.lastUpdate)
	}
	return s
}

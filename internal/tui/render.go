package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"goglobe/internal/feed"
	"goglobe/internal/globe"
)

const (
	sidebarWidth = 28
	popupWidth   = 40
	headerHeight = 1
	footerHeight = 2
)

// layout is the screen geometry shared by View and the mouse handler.
type layout struct {
	contentW, contentH int
	sideW              int // side column including the one-cell gap
	paneX, paneY       int
	paneW, paneH       int
	// globe frame inside the pane
	globeX, globeY int
	globeW, globeH int
}

func (m Model) layout() layout {
	var l layout
	l.contentW = max(10, m.width)
	l.contentH = max(4, m.height-headerHeight-footerHeight)
	switch {
	case m.showSidebar:
		l.sideW = sidebarWidth + 1
	case m.inspectPopup != "":
		l.sideW = popupWidth + 1
	}
	l.paneX, l.paneY = l.sideW, headerHeight
	l.paneW = max(10, l.contentW-l.sideW)
	l.paneH = l.contentH

	l.globeW, l.globeH = l.paneW, l.paneH
	if m.cfg.Width > 0 {
		l.globeW = min(m.cfg.Width, l.paneW)
	}
	if m.cfg.Height > 0 {
		l.globeH = min(m.cfg.Height, l.paneH)
	}
	l.globeX = l.paneX + (l.paneW-l.globeW)/2
	l.globeY = l.paneY + (l.paneH-l.globeH)/2
	return l
}

// globeCell maps a screen position to frame coordinates.
func (l layout) globeCell(x, y int) (int, int, bool) {
	gx, gy := x-l.globeX, y-l.globeY
	if gx < 0 || gy < 0 || gx >= l.globeW || gy >= l.globeH {
		return 0, 0, false
	}
	return gx, gy, true
}

// redraw renders the base layer and overlay for the current state.
func (m *Model) redraw() {
	l := m.layout()
	if m.renderer == nil || m.width == 0 || m.height == 0 {
		m.frame = nil
		return
	}
	f := m.renderer.Render(l.globeW, l.globeH, m.viewer.Camera(), m.viewer.Rotation())
	if m.overlay != nil {
		m.overlay.Apply(f, m.layers)
	}
	m.frame = f
}

// setHops replaces the path and rebuilds the overlay.
func (m *Model) setHops(hops []feed.Hop) {
	m.hops = hops
	m.overlay = globe.NewOverlay(feed.Points(hops))
	if m.showHops {
		m.refreshHopTable()
	}
	m.redraw()
}

func cellStyle(c globe.Color) (lipgloss.Style, bool) {
	switch c {
	case globe.ColorTarget:
		return targetStyle, true
	case globe.ColorLine:
		return lineStyle, true
	case globe.ColorNight:
		return nightStyle, true
	}
	return lipgloss.Style{}, false
}

// Paint renders a frame as text, styling runs of same-colored cells.
func Paint(f *globe.Frame) string {
	if f == nil {
		return ""
	}
	var (
		out strings.Builder
		run strings.Builder
	)
	flush := func(c globe.Color) {
		if run.Len() == 0 {
			return
		}
		if st, ok := cellStyle(c); ok {
			out.WriteString(st.Render(run.String()))
		} else {
			out.WriteString(run.String())
		}
		run.Reset()
	}
	for y := 0; y < f.H; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		cur := globe.ColorNone
		for x := 0; x < f.W; x++ {
			c := f.At(x, y)
			if c.Color != cur {
				flush(cur)
				cur = c.Color
			}
			run.WriteRune(c.Char)
		}
		flush(cur)
	}
	return out.String()
}

// renderGlobe draws the pane: the painted frame centered in it, or the
// texture error when there is nothing to draw.
func (m Model) renderGlobe(l layout) string {
	if m.renderer == nil {
		msg := "no texture loaded"
		if m.textureErr != nil {
			msg = m.textureErr.Error()
		}
		box := boxStyle.MaxWidth(l.paneW).Render(errorStyle.Render(msg))
		return lipgloss.Place(l.paneW, l.paneH, lipgloss.Center, lipgloss.Center, box)
	}
	if m.frame == nil {
		return lipgloss.NewStyle().Width(l.paneW).Height(l.paneH).Render("")
	}
	left := l.globeX - l.paneX
	top := l.globeY - l.paneY
	rows := strings.Split(Paint(m.frame), "\n")
	pad := strings.Repeat(" ", left)
	var b strings.Builder
	for i := 0; i < top; i++ {
		b.WriteString("\n")
	}
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(pad)
		b.WriteString(r)
	}
	return lipgloss.NewStyle().Width(l.paneW).Height(l.paneH).Render(b.String())
}

// hoverAt updates the lat/lon readout for a mouse position.
func (m *Model) hoverAt(x, y int) {
	m.hoverHasGeo = false
	if m.frame == nil {
		return
	}
	gx, gy, ok := m.layout().globeCell(x, y)
	if !ok {
		return
	}
	s := m.frame.SampleAt(gx, gy)
	if !s.Hit {
		return
	}
	m.hoverLat, m.hoverLon = globe.SampleLatLon(s)
	m.hoverHasGeo = true
}

// viewCenter is the lat/lon under the middle of the frame.
func (m Model) viewCenter() (globe.GeoPoint, bool) {
	if m.frame == nil {
		return globe.GeoPoint{}, false
	}
	s := m.frame.SampleAt(m.frame.W/2, m.frame.H/2)
	if !s.Hit {
		return globe.GeoPoint{}, false
	}
	lat, lon := globe.SampleLatLon(s)
	return globe.GeoPoint{Lat: lat, Lon: lon}, true
}

// inspectNearest finds the located hop closest to the view center.
func (m Model) inspectNearest() (feed.Hop, float64, bool) {
	center, ok := m.viewCenter()
	if !ok {
		return feed.Hop{}, 0, false
	}
	var (
		best  feed.Hop
		bestD = -1.0
	)
	for _, h := range m.hops {
		lat, lon, ok := h.LatLon()
		if !ok {
			continue
		}
		d := feed.Distance(center, globe.GeoPoint{Lat: lat, Lon: lon})
		if bestD < 0 || d < bestD {
			best, bestD = h, d
		}
	}
	return best, bestD, bestD >= 0
}

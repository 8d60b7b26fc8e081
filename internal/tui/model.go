package tui

import (
	"context"
	"os"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"goglobe/internal/config"
	"goglobe/internal/feed"
	"goglobe/internal/globe"
)

// Options wires a Model to its collaborators. Renderer may be nil, in which
// case TextureErr is shown in place of the globe.
type Options struct {
	View       config.ViewConfig
	Globe      globe.Options
	Renderer   *globe.Renderer
	TextureErr error
	Source     feed.Source
	Locator    feed.Locator
}

type Model struct {
	cfg config.ViewConfig

	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	// globe
	renderer   *globe.Renderer
	textureErr error
	viewer     *globe.ViewerState
	overlay    *globe.Overlay
	layers     globe.Layers
	frame      *globe.Frame
	distance   float64

	// drag tracking, in cells
	lastMouseX int
	lastMouseY int

	// hops
	hops       []feed.Hop
	locator    feed.Locator
	feedGen    int
	updates    chan feed.Update
	feedDone   chan error
	cancel     context.CancelFunc
	lastUpdate time.Time
	selPath    string

	// File explorer
	cwd   string
	l     list.Model
	items []list.Item

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// inspect popup
	inspectPopup string

	// hover state
	hoverHasGeo bool
	hoverLat    float64
	hoverLon    float64

	// hop table
	showHops bool
	tbl      table.Model
}

func New(opts Options) Model {
	m := Model{
		cfg:         opts.View,
		helpVisible: true,
		status:      "goglobe ready",
		renderer:    opts.Renderer,
		textureErr:  opts.TextureErr,
		viewer:      globe.NewViewerState(opts.Globe),
		layers:      globe.AllLayers,
		overlay:     globe.NewOverlay(nil),
		locator:     opts.Locator,
	}
	if m.cfg.FrameInterval <= 0 {
		m.cfg.FrameInterval = 16 * time.Millisecond
	}
	if m.cfg.CellWidthPx <= 0 {
		m.cfg.CellWidthPx = 8
	}
	if m.cfg.CellHeightPx <= 0 {
		m.cfg.CellHeightPx = 16
	}
	m.viewer.SetAutoRotating(opts.View.AutoRotate)
	m.distance = m.viewer.Camera().Z
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Traces"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT or one \"lat, lon\" per line. Ctrl+S to plot; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	m.startFeed(opts.Source)
	if m.textureErr != nil {
		m.status = "texture error: " + m.textureErr.Error()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(m.cfg.FrameInterval), m.waitForFeed())
}

package tui

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"goglobe/internal/feed"
)

type tickMsg time.Time

// feedMsg carries an update from the feed started as generation gen.
type feedMsg struct {
	gen    int
	update feed.Update
}

type feedDoneMsg struct {
	gen int
	err error
}

type fileLoadedMsg struct {
	path string
	hops []feed.Hop
	err  error
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// startFeed runs src in the background, enriched through the locator.
func (m *Model) startFeed(src feed.Source) {
	m.stopFeed()
	m.feedGen++
	if src == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.updates = make(chan feed.Update, 16)
	m.feedDone = make(chan error, 1)
	updates, done := m.updates, m.feedDone
	src = feed.WithLocator(src, m.locator)
	go func() {
		done <- src.Stream(ctx, updates)
		close(updates)
	}()
	m.status = "connecting to " + src.String()
}

func (m *Model) stopFeed() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.updates, m.feedDone = nil, nil
}

// waitForFeed blocks on the running feed for its next message.
func (m Model) waitForFeed() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	gen, updates, done := m.feedGen, m.updates, m.feedDone
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			err := <-done
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			return feedDoneMsg{gen: gen, err: err}
		}
		return feedMsg{gen: gen, update: u}
	}
}

// loadFileCmd reads and enriches a trace file off the UI goroutine.
func loadFileCmd(path string, loc feed.Locator) tea.Cmd {
	return func() tea.Msg {
		hops, err := feed.LoadFile(path)
		if err != nil {
			return fileLoadedMsg{path: path, err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return fileLoadedMsg{path: path, hops: feed.Enrich(ctx, hops, loc)}
	}
}

func displayName(path string) string {
	if path == "" {
		return "<pasted>"
	}
	return filepath.Base(path)
}

package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Update is one delivery from a Source. Replace discards the hops received
// so far; otherwise Hops extend the current path.
type Update struct {
	Hops    []Hop
	Replace bool
	At      time.Time
}

// Apply folds u into the current hop list.
func (u Update) Apply(current []Hop) []Hop {
	if u.Replace {
		return number(append([]Hop(nil), u.Hops...))
	}
	return number(append(append([]Hop(nil), current...), u.Hops...))
}

// Source produces hop updates until ctx is done or the source is exhausted.
// Errors are reported to the caller; a source that can recover (a dropped
// WebSocket) keeps running and only returns on ctx cancellation.
type Source interface {
	Stream(ctx context.Context, out chan<- Update) error
	String() string
}

// Options tunes the network sources.
type Options struct {
	Timeout time.Duration
	// Interval re-polls HTTP sources; zero fetches once.
	Interval time.Duration
}

// Open picks a Source for name: http(s) URLs poll a /trace style endpoint,
// ws(s) URLs stream hops, anything else is a local file.
func Open(name string, opts Options) (Source, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty source", ErrDataFeed)
	}
	u, err := url.Parse(name)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// bare paths, including windows drive letters
		return &FileSource{Path: name}, nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPSource(name, opts), nil
	case "ws", "wss":
		return NewWebSocketSource(name, opts), nil
	case "file":
		return &FileSource{Path: u.Path}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrDataFeed, u.Scheme)
	}
}

func send(ctx context.Context, out chan<- Update, u Update) error {
	select {
	case out <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package feed

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 60 * time.Second
)

// WebSocketSource reads hops pushed by a server, one hop or hop array per
// text message. Each new connection restarts the path. A normal close ends
// the stream; dropped connections are redialled with exponential backoff.
type WebSocketSource struct {
	URL    string
	dialer *websocket.Dialer

	minBackoff time.Duration
}

func NewWebSocketSource(url string, opts Options) *WebSocketSource {
	d := *websocket.DefaultDialer
	if opts.Timeout > 0 {
		d.HandshakeTimeout = opts.Timeout
	}
	return &WebSocketSource{URL: url, dialer: &d, minBackoff: minBackoff}
}

func (s *WebSocketSource) String() string { return s.URL }

func (s *WebSocketSource) Stream(ctx context.Context, out chan<- Update) error {
	backoff := s.minBackoff
	for {
		err := s.session(ctx, out)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			// server closed cleanly; the path is complete
			return nil
		}
		log.Printf("feed: %s: %v. Retrying in %v...", s.URL, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (s *WebSocketSource) session(ctx context.Context, out chan<- Update) error {
	c, resp, err := s.dialer.DialContext(ctx, s.URL, http.Header{})
	if err != nil {
		if resp != nil {
			return fmt.Errorf("%w: dial: %s", ErrDataFeed, resp.Status)
		}
		return fmt.Errorf("%w: dial: %w", ErrDataFeed, err)
	}
	defer c.Close()

	// unblock ReadMessage when the caller goes away
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	if err := send(ctx, out, Update{Replace: true, At: time.Now()}); err != nil {
		return err
	}
	for {
		mt, msg, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: read: %w", ErrDataFeed, err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		hops, err := decodeMessage(msg)
		if err != nil {
			log.Printf("feed: %s: skipping message: %v", s.URL, err)
			continue
		}
		if len(hops) == 0 {
			continue
		}
		if err := send(ctx, out, Update{Hops: hops, At: time.Now()}); err != nil {
			return err
		}
	}
}

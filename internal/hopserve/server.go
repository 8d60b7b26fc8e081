// Package hopserve publishes a traceroute path over HTTP in the same shape the
// viewer's feed sources read: /trace returns the hop list, /stream replays it
// over a WebSocket one hop at a time and /texture serves the globe texture.
package hopserve

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"goglobe/internal/feed"
)

const writeWait = 5 * time.Second

type Server struct {
	mux      *http.ServeMux
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	hops    []feed.Hop
	texture string

	// StreamDelay spaces hops on /stream to mimic a trace in progress.
	StreamDelay time.Duration
}

func NewServer(hops []feed.Hop, texture string) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		hops:        hops,
		texture:     texture,
		StreamDelay: 250 * time.Millisecond,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.health)
	s.mux.HandleFunc("/trace", s.trace)
	s.mux.HandleFunc("/stream", s.stream)
	s.mux.HandleFunc("/texture", s.textureText)
}

// SetHops replaces the published path.
func (s *Server) SetHops(hops []feed.Hop) {
	s.mu.Lock()
	s.hops = hops
	s.mu.Unlock()
}

// Reload reads a hop file, enriches it through loc (which may be nil) and
// publishes it. On error the current hops stay in place.
func (s *Server) Reload(ctx context.Context, path string, loc feed.Locator) (int, error) {
	hops, err := feed.LoadFile(path)
	if err != nil {
		return 0, err
	}
	hops = feed.Enrich(ctx, hops, loc)
	s.SetHops(hops)
	return len(hops), nil
}

func (s *Server) snapshot() []feed.Hop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]feed.Hop(nil), s.hops...)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) trace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	hops := s.snapshot()
	if hops == nil {
		hops = []feed.Hop{}
	}
	writeJSON(w, hops)
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("hopserve: upgrade %s: %v", r.RemoteAddr, err)
		return
	}
	defer c.Close()

	for i, h := range s.snapshot() {
		if i > 0 && s.StreamDelay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(s.StreamDelay):
			}
		}
		b, err := json.Marshal(h)
		if err != nil {
			log.Printf("hopserve: encode hop %d: %v", h.Number, err)
			return
		}
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Printf("hopserve: stream to %s: %v", r.RemoteAddr, err)
			return
		}
	}
	c.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "trace complete"))
	// wait briefly for the peer's close reply so it sees a clean shutdown
	c.SetReadDeadline(time.Now().Add(writeWait))
	for {
		if _, _, err := c.NextReader(); err != nil {
			return
		}
	}
}

func (s *Server) textureText(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	tex := s.texture
	s.mu.RUnlock()
	if tex == "" {
		http.Error(w, "no texture configured", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(tex))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"goglobe/internal/geoip"
)

func TestOpenByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"http://localhost:8080/trace", "*feed.HTTPSource"},
		{"https://example.net/trace", "*feed.HTTPSource"},
		{"ws://localhost:8080/stream", "*feed.WebSocketSource"},
		{"file:///tmp/trace.json", "*feed.FileSource"},
		{"testdata/trace.json", "*feed.FileSource"},
		{`C:\traces\trace.json`, "*feed.FileSource"},
	}
	for _, tt := range tests {
		src, err := Open(tt.name, Options{})
		if err != nil {
			t.Errorf("Open(%q): %v", tt.name, err)
			continue
		}
		var got string
		switch src.(type) {
		case *HTTPSource:
			got = "*feed.HTTPSource"
		case *WebSocketSource:
			got = "*feed.WebSocketSource"
		case *FileSource:
			got = "*feed.FileSource"
		}
		if got != tt.want {
			t.Errorf("Open(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
	if fs, _ := Open("file:///tmp/trace.json", Options{}); fs.String() != "/tmp/trace.json" {
		t.Errorf("file URL path = %q", fs.String())
	}
	for _, bad := range []string{"", "ftp://host/trace"} {
		if _, err := Open(bad, Options{}); !errors.Is(err, ErrDataFeed) {
			t.Errorf("Open(%q) err = %v", bad, err)
		}
	}
}

func collect(t *testing.T, src Source, n int) []Update {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out := make(chan Update)
	errc := make(chan error, 1)
	go func() { errc <- src.Stream(ctx, out) }()
	var got []Update
	for len(got) < n {
		select {
		case u := <-out:
			got = append(got, u)
		case err := <-errc:
			t.Fatalf("stream ended after %d updates: %v", len(got), err)
		case <-ctx.Done():
			t.Fatalf("timed out after %d updates", len(got))
		}
	}
	return got
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trace" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"number":1,"ip":"203.0.113.1","coordinates":"52.52, 13.40"},{"number":2,"ip":"203.0.113.2","coordinates":"N/A"}]`))
	}))
	defer srv.Close()

	src, err := Open(srv.URL+"/trace", Options{Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	got := collect(t, src, 1)
	if !got[0].Replace || len(got[0].Hops) != 2 || len(Points(got[0].Hops)) != 1 {
		t.Fatalf("update = %+v", got[0])
	}

	_, err = NewHTTPSource(srv.URL+"/missing", Options{}).Fetch(context.Background())
	if !errors.Is(err, ErrDataFeed) || !strings.Contains(err.Error(), "404") {
		t.Fatalf("404 err = %v", err)
	}
}

func TestHTTPSourcePolls(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	collect(t, NewHTTPSource(srv.URL, Options{Interval: 10 * time.Millisecond}), 3)
	if n := calls.Load(); n < 3 {
		t.Fatalf("server saw %d calls", n)
	}
}

var upgrader = websocket.Upgrader{}

func TestWebSocketSource(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		if conns.Add(1) == 1 {
			// drop the first connection without a close frame
			return
		}
		c.WriteMessage(websocket.TextMessage, []byte(`{"number":1,"coordinates":"0, 0"}`))
		c.WriteMessage(websocket.TextMessage, []byte(`not json`))
		c.WriteMessage(websocket.TextMessage, []byte(`[{"number":2,"coordinates":"0, 10"},{"number":3,"coordinates":"0, 20"}]`))
		c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.ReadMessage()
	}))
	defer srv.Close()

	src, err := Open("ws"+strings.TrimPrefix(srv.URL, "http"), Options{Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	ws := src.(*WebSocketSource)
	ws.minBackoff = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out := make(chan Update, 16)
	if err := src.Stream(ctx, out); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	close(out)
	var got []Update
	for u := range out {
		got = append(got, u)
	}

	// reset from the dropped session, then reset, hop 1, hops 2-3
	if len(got) != 4 {
		t.Fatalf("got %d updates: %+v", len(got), got)
	}
	if !got[0].Replace || !got[1].Replace {
		t.Fatalf("sessions did not start with a reset: %+v", got[:2])
	}
	var hops []Hop
	for _, u := range got {
		hops = u.Apply(hops)
	}
	if len(hops) != 3 || hops[2].Number != 3 {
		t.Fatalf("hops = %+v", hops)
	}
	if n := conns.Load(); n != 2 {
		t.Fatalf("server saw %d connections, want 2", n)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	tests := []struct {
		name    string
		path    string
		located int
	}{
		{"trace json", write("trace.json", `[{"number":1,"coordinates":"1, 2"},{"number":2,"coordinates":"N/A"}]`), 1},
		{"geojson in json", write("path.json", `{"type":"LineString","coordinates":[[2,1],[4,3]]}`), 2},
		{"csv", write("hops.csv", "lat,lon,ip\n1,2,203.0.113.5\n3,4,203.0.113.6\n"), 2},
		{"wkt", write("path.wkt", "LINESTRING(0 0,10 10,20 20)"), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, &FileSource{Path: tt.path}, 1)
			if n := len(Points(got[0].Hops)); n != tt.located {
				t.Fatalf("located hops = %d, want %d", n, tt.located)
			}
		})
	}

	err := (&FileSource{Path: filepath.Join(dir, "nope.json")}).Stream(context.Background(), make(chan Update, 1))
	if !errors.Is(err, ErrDataFeed) {
		t.Fatalf("missing file err = %v", err)
	}
}

type fakeLocator map[string]geoip.Location

func (f fakeLocator) Locate(_ context.Context, ip string) (geoip.Location, bool) {
	l, ok := f[ip]
	return l, ok
}

func TestEnrich(t *testing.T) {
	loc := fakeLocator{"203.0.113.1": {Lat: 40.7128, Lon: -74.006, City: "New York", Country: "US"}}
	hops := []Hop{
		{IP: "203.0.113.1", Coordinates: "N/A", Location: "N/A"},
		{IP: "203.0.113.2"},
		{IP: "203.0.113.1", Coordinates: "1, 1", Location: "Elsewhere"},
	}
	Enrich(context.Background(), hops, loc)
	if hops[0].Coordinates != "40.7128, -74.0060" || hops[0].Location != "US/New York" {
		t.Errorf("hop 0 = %+v", hops[0])
	}
	if hops[1].Located() {
		t.Errorf("hop 1 = %+v, want unresolved", hops[1])
	}
	if hops[2].Coordinates != "1, 1" || hops[2].Location != "Elsewhere" {
		t.Errorf("hop 2 overwritten: %+v", hops[2])
	}
}

func TestWithLocator(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "trace.json")
	if err := os.WriteFile(p, []byte(`[{"ip":"203.0.113.1"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	src := WithLocator(&FileSource{Path: p}, fakeLocator{"203.0.113.1": {Lat: 1, Lon: 2}})
	got := collect(t, src, 1)
	if len(Points(got[0].Hops)) != 1 {
		t.Fatalf("hops not enriched: %+v", got[0].Hops)
	}
	if WithLocator(&FileSource{Path: p}, nil).String() != p {
		t.Fatal("nil locator should return the source unchanged")
	}
}

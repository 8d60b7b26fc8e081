package globe_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"goglobe/internal/globe"
	"goglobe/internal/hopserve"
)

func TestOpenTextureFromHopserve(t *testing.T) {
	tex := strings.Repeat(strings.Repeat("#", 9)+"\n", 5)
	srv := httptest.NewServer(hopserve.NewServer(nil, tex).Handler())
	defer srv.Close()

	got, err := globe.OpenTexture(context.Background(), srv.URL+"/texture", time.Second)
	if err != nil {
		t.Fatalf("OpenTexture: %v", err)
	}
	if x, y := got.Size(); x != 8 || y != 5 {
		t.Fatalf("Size() = (%d, %d), want (8, 5)", x, y)
	}
}

func TestOpenTextureFetchErrors(t *testing.T) {
	empty := httptest.NewServer(hopserve.NewServer(nil, "").Handler())
	defer empty.Close()
	bad := httptest.NewServer(hopserve.NewServer(nil, "abc\nde\n").Handler())
	defer bad.Close()
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"no texture configured", empty.URL + "/texture"},
		{"ragged rows", bad.URL + "/texture"},
		{"connection refused", closedURL + "/texture"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := globe.OpenTexture(context.Background(), tt.url, time.Second)
			if !errors.Is(err, globe.ErrTextureLoad) {
				t.Fatalf("err = %v, want ErrTextureLoad", err)
			}
		})
	}
}

func TestIsTextureURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://localhost:8080/texture", true},
		{"HTTPS://example.net/earth.txt", true},
		{"textures/graticule.txt", false},
		{"/srv/http/earth.txt", false},
	}
	for _, tt := range tests {
		if got := globe.IsTextureURL(tt.in); got != tt.want {
			t.Errorf("IsTextureURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"goglobe/internal/globe"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goglobe.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	opts := cfg.GlobeOptions()
	if opts.Radius != globe.DefaultRadius || opts.Camera.Z != globe.DefaultCameraZ {
		t.Fatalf("GlobeOptions = %+v", opts)
	}
	if opts.MinDistance != 40 || opts.MaxDistance != 80 {
		t.Fatalf("zoom range = %v..%v, want 40..80", opts.MinDistance, opts.MaxDistance)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.View.FrameInterval != 16*time.Millisecond {
		t.Fatalf("frame interval = %v", cfg.View.FrameInterval)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := writeConfig(t, `
globe:
  texture: maps/world.txt
  night_texture: maps/night.txt
  initial_rotation:
    x: 10
view:
  frame_interval: 33ms
  auto_rotate: false
geoip:
  cache_ttl: 1h
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Globe.Texture != "maps/world.txt" || cfg.Globe.NightTexture != "maps/night.txt" {
		t.Errorf("textures = %q, %q", cfg.Globe.Texture, cfg.Globe.NightTexture)
	}
	if cfg.Globe.InitialRotation.X != 10 || cfg.Globe.InitialRotation.Y != globe.DefaultRotationY {
		t.Errorf("initial rotation = %+v", cfg.Globe.InitialRotation)
	}
	if cfg.View.FrameInterval != 33*time.Millisecond || cfg.View.AutoRotate {
		t.Errorf("view = %+v", cfg.View)
	}
	if cfg.View.AutoRotateSpeed != -0.003 {
		t.Errorf("auto rotate speed lost its default: %v", cfg.View.AutoRotateSpeed)
	}
	if cfg.GeoIP.CacheTTL != time.Hour || cfg.GeoIP.IPInfoURL != "https://ipinfo.io" {
		t.Errorf("geoip = %+v", cfg.GeoIP)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "globe: [", "failed to parse config file"},
		{"zero radius", "globe:\n  radius: 0\n", "globe.radius"},
		{"reversed zoom", "globe:\n  min_distance: 90\n  max_distance: 50\n", "exceeds max_distance"},
		{"camera inside sphere", "globe:\n  min_distance: 20\n", "outside radius"},
		{"camera beyond zoom range", "globe:\n  camera:\n    z: 100\n", "globe.camera.z"},
		{"camera below zoom range", "globe:\n  camera:\n    z: 10\n", "globe.camera.z"},
		{"zero frame interval", "view:\n  frame_interval: 0s\n", "frame_interval"},
		{"negative feed interval", "feed:\n  interval: -1s\n", "feed.interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Fatalf("missing file err = %v", err)
	}
}

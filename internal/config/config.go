package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"goglobe/internal/globe"
)

// Config represents the complete viewer and server configuration
type Config struct {
	Globe   GlobeConfig   `yaml:"globe"`
	View    ViewConfig    `yaml:"view"`
	Feed    FeedConfig    `yaml:"feed"`
	GeoIP   GeoIPConfig   `yaml:"geoip"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// GlobeConfig describes the sphere, its textures, and the camera
type GlobeConfig struct {
	Texture         string         `yaml:"texture"`
	NightTexture    string         `yaml:"night_texture"`
	Radius          float64        `yaml:"radius"`
	Camera          CameraConfig   `yaml:"camera"`
	MinDistance     float64        `yaml:"min_distance"`
	MaxDistance     float64        `yaml:"max_distance"`
	InitialRotation RotationConfig `yaml:"initial_rotation"`
}

type CameraConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// RotationConfig holds start angles in degrees
type RotationConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ViewConfig controls the frame loop and input mapping
type ViewConfig struct {
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	FrameInterval   time.Duration `yaml:"frame_interval"`
	AutoRotate      bool          `yaml:"auto_rotate"`
	AutoRotateSpeed float64       `yaml:"auto_rotate_speed"`
	DragSensitivity float64       `yaml:"drag_sensitivity"`
	CellWidthPx     float64       `yaml:"cell_width_px"`
	CellHeightPx    float64       `yaml:"cell_height_px"`
	WheelStep       float64       `yaml:"wheel_step"`
	KeyStepPx       float64       `yaml:"key_step_px"`
}

// FeedConfig names where hop records come from
type FeedConfig struct {
	Source  string        `yaml:"source"`
	Timeout time.Duration `yaml:"timeout"`
	// Interval re-polls http sources; zero fetches once
	Interval time.Duration `yaml:"interval"`
}

// GeoIPConfig configures coordinate lookup for hops without coordinates
type GeoIPConfig struct {
	MMDB          string        `yaml:"mmdb"`
	IPInfoToken   string        `yaml:"ipinfo_token"`
	IPInfoURL     string        `yaml:"ipinfo_url"`
	IPInfoTimeout time.Duration `yaml:"ipinfo_timeout"`
	CacheDir      string        `yaml:"cache_dir"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
}

// ServerConfig contains hopserve settings
type ServerConfig struct {
	Listen  string `yaml:"listen"`
	Hops    string `yaml:"hops"`
	Texture string `yaml:"texture"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

// Default returns the built-in settings used when no file overrides them.
func Default() *Config {
	return &Config{
		Globe: GlobeConfig{
			Texture:     "textures/graticule.txt",
			Radius:      globe.DefaultRadius,
			Camera:      CameraConfig{Z: globe.DefaultCameraZ},
			MinDistance: globe.DefaultMinDistance,
			MaxDistance: globe.DefaultMaxDistance,
			InitialRotation: RotationConfig{
				X: globe.DefaultRotationX,
				Y: globe.DefaultRotationY,
			},
		},
		View: ViewConfig{
			FrameInterval:   16 * time.Millisecond,
			AutoRotate:      true,
			AutoRotateSpeed: -0.003,
			DragSensitivity: globe.DefaultSensitivity,
			CellWidthPx:     8,
			CellHeightPx:    16,
			WheelStep:       5,
			KeyStepPx:       20,
		},
		Feed: FeedConfig{
			Timeout: 10 * time.Second,
		},
		GeoIP: GeoIPConfig{
			IPInfoURL:     "https://ipinfo.io",
			IPInfoTimeout: 2 * time.Second,
			CacheTTL:      7 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
	}
}

// Load loads configuration from a YAML file on top of Default().
func Load(filename string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(filename) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

// Validate rejects settings the renderer cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Globe.Radius <= 0 {
		errs = append(errs, fmt.Errorf("globe.radius must be positive, got %v", c.Globe.Radius))
	}
	if c.Globe.MinDistance > c.Globe.MaxDistance {
		errs = append(errs, fmt.Errorf("globe.min_distance %v exceeds max_distance %v", c.Globe.MinDistance, c.Globe.MaxDistance))
	}
	if c.Globe.MinDistance <= c.Globe.Radius {
		errs = append(errs, fmt.Errorf("globe.min_distance %v must be outside radius %v", c.Globe.MinDistance, c.Globe.Radius))
	}
	if z := c.Globe.Camera.Z; z < c.Globe.MinDistance || z > c.Globe.MaxDistance {
		errs = append(errs, fmt.Errorf("globe.camera.z %v must be within min_distance %v and max_distance %v", z, c.Globe.MinDistance, c.Globe.MaxDistance))
	}
	if c.View.Width < 0 || c.View.Height < 0 {
		errs = append(errs, errors.New("view.width and view.height must not be negative"))
	}
	if c.View.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("view.frame_interval must be positive, got %v", c.View.FrameInterval))
	}
	if c.Feed.Interval < 0 {
		errs = append(errs, fmt.Errorf("feed.interval must not be negative, got %v", c.Feed.Interval))
	}
	if c.View.CellWidthPx <= 0 || c.View.CellHeightPx <= 0 {
		errs = append(errs, errors.New("view.cell_width_px and view.cell_height_px must be positive"))
	}
	return errors.Join(errs...)
}

// GlobeOptions maps the globe section onto renderer options. Textures are
// loaded by the caller.
func (c *Config) GlobeOptions() globe.Options {
	return globe.Options{
		Camera:      globe.Camera{X: c.Globe.Camera.X, Y: c.Globe.Camera.Y, Z: c.Globe.Camera.Z},
		Radius:      c.Globe.Radius,
		RotationX:   c.Globe.InitialRotation.X,
		RotationY:   c.Globe.InitialRotation.Y,
		MinDistance: c.Globe.MinDistance,
		MaxDistance: c.Globe.MaxDistance,
		Sensitivity: c.View.DragSensitivity,
	}
}

// Print displays the configuration
func (c *Config) Print() {
	fmt.Printf("Texture: %s", c.Globe.Texture)
	if c.Globe.NightTexture != "" {
		fmt.Printf(" (night: %s)", c.Globe.NightTexture)
	}
	fmt.Println()
	fmt.Printf("Globe: radius %.1f, camera z %.1f (zoom %.0f-%.0f)\n", c.Globe.Radius, c.Globe.Camera.Z, c.Globe.MinDistance, c.Globe.MaxDistance)
	fmt.Printf("Frame interval: %s, auto-rotate %v (%.4f rad/frame)\n", c.View.FrameInterval, c.View.AutoRotate, c.View.AutoRotateSpeed)
	if c.Feed.Source != "" {
		fmt.Printf("Feed: %s", c.Feed.Source)
		if c.Feed.Interval > 0 {
			fmt.Printf(" (every %s)", c.Feed.Interval)
		}
		fmt.Println()
	}
	if c.GeoIP.MMDB != "" {
		fmt.Printf("GeoIP DB: %s\n", c.GeoIP.MMDB)
	}
	if c.GeoIP.IPInfoToken != "" {
		fmt.Printf("ipinfo: %s\n", c.GeoIP.IPInfoURL)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"goglobe/internal/config"
	"goglobe/internal/feed"
	"goglobe/internal/geoip"
	"goglobe/internal/globe"
	"goglobe/internal/tui"
)

var (
	configFile  = flag.String("config", "", "Path to YAML config file")
	texturePath = flag.String("texture", "", "Day texture file or http(s) URL (overrides config)")
	nightPath   = flag.String("night", "", "Night texture file or http(s) URL (overrides config)")
	feedSpec    = flag.String("feed", "", "Hop source: file path, http(s):// or ws(s):// URL")
	once        = flag.Bool("once", false, "Print a single frame to stdout and exit")
	width       = flag.Int("w", 0, "Globe width in cells (0 = fit terminal)")
	height      = flag.Int("h", 0, "Globe height in cells (0 = fit terminal)")
	logFile     = flag.String("log", "", "Write logs to this file")
	debug       = flag.Bool("debug", false, "Verbose log lines")
	showConfig  = flag.Bool("print-config", false, "Print the effective configuration and exit")
)

func main() {
	flag.Parse()
	if flag.NArg() > 0 && *feedSpec == "" {
		*feedSpec = flag.Arg(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	applyFlags(cfg)
	if *showConfig {
		cfg.Print()
		return
	}

	resolver, err := geoip.Open(cfg.GeoIP)
	if err != nil {
		log.Fatalf("geoip: %v", err)
	}
	defer resolver.Close()
	var locator feed.Locator
	if resolver.Enabled() {
		locator = resolver
	}

	var src feed.Source
	if cfg.Feed.Source != "" {
		src, err = feed.Open(cfg.Feed.Source, feed.Options{Timeout: cfg.Feed.Timeout, Interval: cfg.Feed.Interval})
		if err != nil {
			log.Fatalf("feed: %v", err)
		}
	}

	opts := cfg.GlobeOptions()
	renderer, texErr := loadRenderer(cfg, &opts)

	if *once {
		if texErr != nil {
			log.Fatalf("texture: %v", texErr)
		}
		if err := printOnce(cfg, opts, renderer, src, locator); err != nil {
			log.Fatal(err)
		}
		return
	}

	if cfg.Logging.File != "" {
		f, err := tea.LogToFile(cfg.Logging.File, "goglobe")
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	if cfg.Logging.Debug {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	m := tui.New(tui.Options{
		View:       cfg.View,
		Globe:      opts,
		Renderer:   renderer,
		TextureErr: texErr,
		Source:     src,
		Locator:    locator,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		log.Fatal(err)
	}
}

func applyFlags(cfg *config.Config) {
	if *texturePath != "" {
		cfg.Globe.Texture = *texturePath
	}
	if *nightPath != "" {
		cfg.Globe.NightTexture = *nightPath
	}
	if *feedSpec != "" {
		cfg.Feed.Source = *feedSpec
	}
	if *width > 0 {
		cfg.View.Width = *width
	}
	if *height > 0 {
		cfg.View.Height = *height
	}
	if *logFile != "" {
		cfg.Logging.File = *logFile
	}
	if *debug {
		cfg.Logging.Debug = true
	}
}

// loadRenderer reads or fetches the textures into opts. A failure is
// returned for the viewer to display rather than ending the program.
func loadRenderer(cfg *config.Config, opts *globe.Options) (*globe.Renderer, error) {
	ctx := context.Background()
	day, err := globe.OpenTexture(ctx, cfg.Globe.Texture, cfg.Feed.Timeout)
	if err != nil {
		return nil, err
	}
	opts.Day = day
	if cfg.Globe.NightTexture != "" {
		night, err := globe.OpenTexture(ctx, cfg.Globe.NightTexture, cfg.Feed.Timeout)
		if err != nil {
			return nil, err
		}
		opts.Night = night
	}
	return globe.NewRenderer(*opts)
}

// printOnce renders the initial view with the feed's first batch of hops.
func printOnce(cfg *config.Config, opts globe.Options, r *globe.Renderer, src feed.Source, loc feed.Locator) error {
	w, h := cfg.View.Width, cfg.View.Height
	if w <= 0 {
		w = 90
	}
	if h <= 0 {
		h = 45
	}
	var hops []feed.Hop
	if src != nil {
		var err error
		hops, err = drain(cfg, feed.WithLocator(src, loc))
		if err != nil {
			return fmt.Errorf("feed: %w", err)
		}
	}
	frame := r.Render(w, h, opts.Camera, opts.InitialRotation())
	globe.NewOverlay(feed.Points(hops)).Apply(frame, globe.AllLayers)
	fmt.Println(tui.Paint(frame))
	return nil
}

// drain collects updates until the source finishes or the feed timeout passes.
func drain(cfg *config.Config, src feed.Source) ([]feed.Hop, error) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if cfg.Feed.Timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), cfg.Feed.Timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()
	updates := make(chan feed.Update)
	errc := make(chan error, 1)
	go func() {
		errc <- src.Stream(ctx, updates)
		close(updates)
	}()
	var hops []feed.Hop
	for u := range updates {
		hops = u.Apply(hops)
	}
	err := <-errc
	if err != nil && len(hops) > 0 && ctx.Err() != nil {
		// a live stream that outlasts the timeout still prints what arrived
		err = nil
	}
	return hops, err
}

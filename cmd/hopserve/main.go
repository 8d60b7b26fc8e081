package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goglobe/internal/config"
	"goglobe/internal/feed"
	"goglobe/internal/geoip"
	"goglobe/internal/globe"
	"goglobe/internal/hopserve"
)

var (
	configFile = flag.String("config", "", "Path to YAML config file")
	listen     = flag.String("listen", "", "Address to listen on (overrides config)")
	hopsFile   = flag.String("hops", "", "Hop file to publish (overrides config)")
	texture    = flag.String("texture", "", "Texture file served on /texture (overrides config)")
	delay      = flag.Duration("delay", 250*time.Millisecond, "Pause between hops on /stream")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *hopsFile != "" {
		cfg.Server.Hops = *hopsFile
	}
	if *texture != "" {
		cfg.Server.Texture = *texture
	}
	if cfg.Logging.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
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

	var tex string
	if cfg.Server.Texture != "" {
		// parse once to reject malformed files
		t, err := globe.LoadTexture(cfg.Server.Texture)
		if err != nil {
			log.Fatalf("texture: %v", err)
		}
		w, h := t.Size()
		data, err := os.ReadFile(cfg.Server.Texture)
		if err != nil {
			log.Fatalf("texture: %v", err)
		}
		tex = string(data)
		log.Printf("hopserve: texture %s (%dx%d)", cfg.Server.Texture, w, h)
	}

	server := hopserve.NewServer(nil, tex)
	server.StreamDelay = *delay
	reload := func() error {
		if cfg.Server.Hops == "" {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := server.Reload(ctx, cfg.Server.Hops, locator)
		if err != nil {
			return err
		}
		log.Printf("hopserve: %d hops from %s", n, cfg.Server.Hops)
		return nil
	}
	if err := reload(); err != nil {
		log.Fatalf("hops: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("hopserve: listening on %s", cfg.Server.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigCh {
		if sig != syscall.SIGHUP {
			break
		}
		// keep serving the previous path when the file is mid-edit
		if err := reload(); err != nil {
			log.Printf("hopserve: reload %s: %v", cfg.Server.Hops, err)
		}
	}

	log.Println("hopserve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}

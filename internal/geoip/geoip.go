// Package geoip resolves router addresses to coordinates. Lookups go through
// a local pebble cache, then a MaxMind City database, then the ipinfo.io API.
package geoip

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/netip"
	"strings"
	"time"

	"goglobe/internal/config"
)

// Location is where an address was placed on the globe.
type Location struct {
	Lat     float64
	Lon     float64
	City    string
	Country string
}

// Place renders "Country/City", or just the country when the city is unknown.
func (l Location) Place() string {
	switch {
	case l.City != "" && l.Country != "":
		return l.Country + "/" + l.City
	case l.Country != "":
		return l.Country
	default:
		return l.City
	}
}

// Coordinates renders the location the way hop records carry it.
func (l Location) Coordinates() string {
	return fmt.Sprintf("%.4f, %.4f", l.Lat, l.Lon)
}

// Resolver chains the configured lookups. Any of them may be absent; a
// Resolver with none of them never finds anything.
type Resolver struct {
	cache  *Cache
	city   *CityDB
	ipinfo *ipinfoClient
	now    func() time.Time
}

// Open builds a Resolver from config. A missing City database is fatal when
// one is configured; an empty path simply disables that stage.
func Open(cfg config.GeoIPConfig) (*Resolver, error) {
	r := &Resolver{now: time.Now}
	if strings.TrimSpace(cfg.MMDB) != "" {
		db, err := OpenCityDB(cfg.MMDB)
		if err != nil {
			return nil, err
		}
		r.city = db
	}
	if strings.TrimSpace(cfg.CacheDir) != "" {
		c, err := OpenCache(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.cache = c
	}
	r.ipinfo = newIPInfoClient(cfg.IPInfoToken, cfg.IPInfoURL, cfg.IPInfoTimeout)
	return r, nil
}

// Enabled reports whether any lookup stage is configured.
func (r *Resolver) Enabled() bool {
	return r != nil && (r.city != nil || r.ipinfo != nil || r.cache != nil)
}

// Locate finds coordinates for ip. Private, loopback and unparsable
// addresses are never looked up.
func (r *Resolver) Locate(ctx context.Context, ip string) (Location, bool) {
	if r == nil {
		return Location{}, false
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil || !routable(addr) {
		return Location{}, false
	}
	addr = addr.Unmap()
	if loc, ok := r.cache.Get(addr, r.now()); ok {
		return loc, true
	}
	loc, ok := r.city.Lookup(addr)
	if !ok {
		loc, err = r.ipinfo.lookup(ctx, addr)
		if err != nil {
			if !errors.Is(err, errNoToken) {
				log.Printf("geoip: ipinfo %s: %v", addr, err)
			}
			return Location{}, false
		}
		ok = true
	}
	if err := r.cache.Put(addr, loc, r.now()); err != nil {
		log.Printf("geoip: cache %s: %v", addr, err)
	}
	return loc, ok
}

// Close releases the database handles.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.city != nil {
		errs = append(errs, r.city.Close())
	}
	if r.cache != nil {
		errs = append(errs, r.cache.Close())
	}
	return errors.Join(errs...)
}

func routable(a netip.Addr) bool {
	return a.IsValid() && !a.IsPrivate() && !a.IsLoopback() && !a.IsUnspecified() &&
		!a.IsLinkLocalUnicast() && !a.IsMulticast()
}

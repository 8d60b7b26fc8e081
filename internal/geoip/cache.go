package geoip

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
)

const (
	cacheKeyPrefix = "loc|"
	cacheCacheSize = 8 << 20
	// stored_at(8) lat(8) lon(8), then uvarint-prefixed city and country
	cacheFixedLen = 24
)

var errBadValue = errors.New("geoip cache: malformed value")

// Cache persists resolved locations between runs so a trace that is replayed
// does not hit the network again.
type Cache struct {
	db    *pebble.DB
	cache *pebble.Cache
	ttl   time.Duration
}

// OpenCache opens (creating if needed) a pebble database at dir. A ttl <= 0
// keeps entries forever.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("geoip cache: path is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("geoip cache: ensure directory: %w", err)
	}
	opts := &pebble.Options{
		Cache: pebble.NewCache(cacheCacheSize),
	}
	level := pebble.LevelOptions{
		FilterPolicy: bloom.FilterPolicy(10),
		FilterType:   pebble.TableFilter,
	}
	opts.Levels = make([]pebble.LevelOptions, 7)
	for i := range opts.Levels {
		opts.Levels[i] = level
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		opts.Cache.Unref()
		return nil, fmt.Errorf("geoip cache: open: %w", err)
	}
	return &Cache{db: db, cache: opts.Cache, ttl: ttl}, nil
}

func cacheKey(addr netip.Addr) []byte {
	return []byte(cacheKeyPrefix + addr.String())
}

// Get returns a stored location unless it has expired.
func (c *Cache) Get(addr netip.Addr, now time.Time) (Location, bool) {
	if c == nil || c.db == nil {
		return Location{}, false
	}
	value, closer, err := c.db.Get(cacheKey(addr))
	if err != nil {
		return Location{}, false
	}
	defer closer.Close()
	loc, storedAt, err := decodeLocation(value)
	if err != nil {
		return Location{}, false
	}
	if c.ttl > 0 && now.Sub(storedAt) > c.ttl {
		return Location{}, false
	}
	return loc, true
}

func (c *Cache) Put(addr netip.Addr, loc Location, now time.Time) error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Set(cacheKey(addr), encodeLocation(loc, now), pebble.Sync)
}

// Close releases pebble resources.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	var err error
	if c.db != nil {
		err = c.db.Close()
	}
	if c.cache != nil {
		c.cache.Unref()
	}
	return err
}

func encodeLocation(loc Location, storedAt time.Time) []byte {
	buf := make([]byte, cacheFixedLen, cacheFixedLen+2*binary.MaxVarintLen64+len(loc.City)+len(loc.Country))
	binary.BigEndian.PutUint64(buf[0:8], uint64(storedAt.Unix()))
	binary.BigEndian.PutUint64(buf[8:16], math.Float64bits(loc.Lat))
	binary.BigEndian.PutUint64(buf[16:24], math.Float64bits(loc.Lon))
	for _, s := range []string{loc.City, loc.Country} {
		buf = binary.AppendUvarint(buf, uint64(len(s)))
		buf = append(buf, s...)
	}
	return buf
}

func decodeLocation(b []byte) (Location, time.Time, error) {
	if len(b) < cacheFixedLen {
		return Location{}, time.Time{}, errBadValue
	}
	storedAt := time.Unix(int64(binary.BigEndian.Uint64(b[0:8])), 0)
	loc := Location{
		Lat: math.Float64frombits(binary.BigEndian.Uint64(b[8:16])),
		Lon: math.Float64frombits(binary.BigEndian.Uint64(b[16:24])),
	}
	rest := b[cacheFixedLen:]
	var strs [2]string
	for i := range strs {
		n, w := binary.Uvarint(rest)
		if w <= 0 || uint64(len(rest)-w) < n {
			return Location{}, time.Time{}, errBadValue
		}
		strs[i] = string(rest[w : w+int(n)])
		rest = rest[w+int(n):]
	}
	loc.City, loc.Country = strs[0], strs[1]
	return loc, storedAt, nil
}

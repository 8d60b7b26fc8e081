package geom

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/paulmach/orb/encoding/wkt"
)

// LoadWKT reads a file holding one WKT geometry.
func LoadWKT(path string) (Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return ParseWKT(string(b))
}

// ParseWKT parses POINT, MULTIPOINT, LINESTRING, MULTILINESTRING, POLYGON
// (outer ring) and their collections.
func ParseWKT(s string) (Data, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Data{}, errors.New("empty wkt")
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return Data{}, fmt.Errorf("wkt: %w", err)
	}
	var d Data
	d.addGeometry(g, nil)
	if d.Len() == 0 {
		return Data{}, fmt.Errorf("wkt: %w", ErrNoCoordinates)
	}
	return d, nil
}

// ParseText accepts what a user is likely to paste: a WKT geometry, or one
// "lat, lon" pair per line (the format of a hop's coordinates field). Blank
// lines and lines starting with # are skipped.
func ParseText(s string) (Data, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Data{}, errors.New("nothing to parse")
	}
	if unicode.IsLetter([]rune(s)[0]) {
		return ParseWKT(s)
	}
	var d Data
	for n, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lat, lon, err := ParseLatLon(line)
		if err != nil {
			return Data{}, fmt.Errorf("line %d: %w", n+1, err)
		}
		d.addPoint(Record{Lon: lon, Lat: lat})
	}
	if d.Len() == 0 {
		return Data{}, ErrNoCoordinates
	}
	return d, nil
}

// ParseLatLon parses "lat, lon" (comma and/or whitespace separated) and
// checks the ranges.
func ParseLatLon(s string) (lat, lon float64, err error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want \"lat, lon\", got %q", s)
	}
	lat, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude %q: %w", parts[0], err)
	}
	lon, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude %q: %w", parts[1], err)
	}
	if !(lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180) {
		return 0, 0, fmt.Errorf("coordinates out of range: %v, %v", lat, lon)
	}
	return lat, lon, nil
}

// Package feed delivers traceroute hops to the viewer from HTTP endpoints,
// WebSocket streams or local files.
package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"goglobe/internal/geom"
	"goglobe/internal/globe"
)

// ErrDataFeed marks failures to fetch or decode hop data. The viewer keeps
// the last good path when it sees one.
var ErrDataFeed = errors.New("data feed")

// Hop is one router on a traceroute path, in the /trace wire format.
// Coordinates is "lat, lon"; anything else (including "N/A") means unknown.
// Latitude and Longitude, when both present, take precedence over it.
type Hop struct {
	Number      int      `json:"number"`
	IP          string   `json:"ip"`
	Host        string   `json:"host"`
	RTT         string   `json:"rtt"`
	Location    string   `json:"location"`
	Coordinates string   `json:"coordinates"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// LatLon returns the hop's position from its latitude/longitude fields,
// falling back to parsing Coordinates.
func (h Hop) LatLon() (lat, lon float64, ok bool) {
	if h.Latitude != nil && h.Longitude != nil {
		lat, lon = *h.Latitude, *h.Longitude
		if lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
			return lat, lon, true
		}
	}
	c := strings.TrimSpace(h.Coordinates)
	if c == "" || strings.EqualFold(c, "N/A") {
		return 0, 0, false
	}
	lat, lon, err := geom.ParseLatLon(c)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// Position formats the resolved position as "lat, lon", or returns the raw
// Coordinates text when there is none.
func (h Hop) Position() string {
	if lat, lon, ok := h.LatLon(); ok {
		return fmt.Sprintf("%.4f, %.4f", lat, lon)
	}
	return h.Coordinates
}

// Located reports whether the hop can be drawn.
func (h Hop) Located() bool {
	_, _, ok := h.LatLon()
	return ok
}

// Points returns the drawable path, skipping hops without valid coordinates.
func Points(hops []Hop) []globe.GeoPoint {
	out := make([]globe.GeoPoint, 0, len(hops))
	for _, h := range hops {
		if lat, lon, ok := h.LatLon(); ok {
			out = append(out, globe.GeoPoint{Lat: lat, Lon: lon})
		}
	}
	return out
}

// Decode reads either a JSON array of hops or a stream of hop objects.
func Decode(r io.Reader) ([]Hop, error) {
	dec := json.NewDecoder(r)
	var hops []Hop
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: decode: %w", ErrDataFeed, err)
		}
		batch, err := decodeMessage(raw)
		if err != nil {
			return nil, err
		}
		hops = append(hops, batch...)
	}
	return number(hops), nil
}

// decodeMessage accepts a single hop object or an array of them.
func decodeMessage(b []byte) ([]Hop, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, nil
	}
	if b[0] == '[' {
		var hops []Hop
		if err := json.Unmarshal(b, &hops); err != nil {
			return nil, fmt.Errorf("%w: decode: %w", ErrDataFeed, err)
		}
		return hops, nil
	}
	var h Hop
	if err := json.Unmarshal(b, &h); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrDataFeed, err)
	}
	return []Hop{h}, nil
}

// number fills in missing hop numbers from the position in the path.
func number(hops []Hop) []Hop {
	for i := range hops {
		if hops[i].Number == 0 {
			hops[i].Number = i + 1
		}
	}
	return hops
}

// FromRecords maps geometry file records onto hops. Recognised properties
// are number, ip, host, rtt, location and name (used when host is absent).
func FromRecords(recs []geom.Record) []Hop {
	hops := make([]Hop, len(recs))
	for i, r := range recs {
		h := Hop{
			IP:          r.Props["ip"],
			Host:        r.Props["host"],
			RTT:         r.Props["rtt"],
			Location:    r.Props["location"],
			Coordinates: fmt.Sprintf("%.4f, %.4f", r.Lat, r.Lon),
		}
		if h.Host == "" {
			h.Host = r.Props["name"]
		}
		if n, err := strconv.Atoi(r.Props["number"]); err == nil {
			h.Number = n
		}
		hops[i] = h
	}
	return number(hops)
}

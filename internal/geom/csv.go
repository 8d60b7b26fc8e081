package geom

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads a CSV with latitude/longitude columns. Column detection:
// lat|latitude|y and lon|lng|long|longitude|x (case-insensitive). Every other
// column is kept as a property under its lower-cased header.
func LoadCSV(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return Data{}, fmt.Errorf("csv: %w", err)
	}
	if len(recs) == 0 {
		return Data{}, errors.New("empty csv")
	}
	header := make([]string, len(recs[0]))
	idxLat, idxLon := -1, -1
	for i, h := range recs[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
		switch header[i] {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		}
	}
	if idxLat == -1 || idxLon == -1 {
		return Data{}, errors.New("csv: latitude/longitude columns not found")
	}
	var d Data
	for _, row := range recs[1:] {
		if idxLon >= len(row) || idxLat >= len(row) {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		var props map[string]string
		for i, v := range row {
			if i == idxLat || i == idxLon || i >= len(header) || header[i] == "" {
				continue
			}
			if props == nil {
				props = make(map[string]string)
			}
			props[header[i]] = strings.TrimSpace(v)
		}
		d.addPoint(Record{Lon: lon, Lat: lat, Props: props})
	}
	if d.Len() == 0 {
		return Data{}, fmt.Errorf("csv: %w", ErrNoCoordinates)
	}
	return d, nil
}

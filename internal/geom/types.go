package geom

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNoCoordinates is returned when a file parses but yields nothing to draw.
var ErrNoCoordinates = errors.New("no coordinates found")

// Record is one located vertex with whatever attributes the source carried.
type Record struct {
	Lon   float64
	Lat   float64
	Props map[string]string
}

// Data holds the geometries of one file in source order. Polygons contribute
// their outer ring to Lines.
type Data struct {
	Points []Record
	Lines  [][]Record
}

func (d *Data) addPoint(r Record) {
	d.Points = append(d.Points, r)
}

func (d *Data) addLine(line []Record) {
	if len(line) == 0 {
		return
	}
	d.Lines = append(d.Lines, line)
}

// Len counts every vertex.
func (d Data) Len() int {
	n := len(d.Points)
	for _, l := range d.Lines {
		n += len(l)
	}
	return n
}

// Path flattens the data into one ordered vertex list: points first, then
// each line's vertices.
func (d Data) Path() []Record {
	out := make([]Record, 0, d.Len())
	out = append(out, d.Points...)
	for _, l := range d.Lines {
		out = append(out, l...)
	}
	return out
}

// Extensions lists the file types Load understands.
var Extensions = []string{".csv", ".geojson", ".kml", ".wkt"}

// Load reads a geometry file, choosing the parser by extension.
func Load(path string) (Data, error) {
	var (
		d   Data
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		d, err = LoadCSV(path)
	case ".geojson":
		d, err = LoadGeoJSON(path)
	case ".kml":
		d, err = LoadKML(path)
	case ".wkt":
		d, err = LoadWKT(path)
	default:
		return Data{}, fmt.Errorf("%s: unsupported file type", path)
	}
	if err != nil {
		return Data{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return d, nil
}

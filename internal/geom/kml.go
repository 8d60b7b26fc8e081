package geom

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPlacemark struct {
	Name       string     `xml:"name"`
	Point      *kmlCoords `xml:"Point"`
	LineString *kmlCoords `xml:"LineString"`
}

// LoadKML extracts Point and LineString coordinates from every Placemark in
// a KML file, however deeply it is nested in Documents or Folders. KML
// coordinates are "lon,lat[,alt]"; altitude is ignored.
func LoadKML(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	return decodeKML(f)
}

func decodeKML(r io.Reader) (Data, error) {
	var d Data
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Data{}, fmt.Errorf("kml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return Data{}, fmt.Errorf("kml placemark: %w", err)
		}
		var props map[string]string
		if name := strings.TrimSpace(pm.Name); name != "" {
			props = map[string]string{"name": name}
		}
		if pm.Point != nil {
			for _, r := range parseKMLTuples(pm.Point.Coordinates, props) {
				d.addPoint(r)
			}
		}
		if pm.LineString != nil {
			d.addLine(parseKMLTuples(pm.LineString.Coordinates, props))
		}
	}
	if d.Len() == 0 {
		return Data{}, fmt.Errorf("kml: %w", ErrNoCoordinates)
	}
	return d, nil
}

// tuples are separated by whitespace
func parseKMLTuples(s string, props map[string]string) []Record {
	var out []Record
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, Record{Lon: lon, Lat: lat, Props: props})
	}
	return out
}

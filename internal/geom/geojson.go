package geom

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSON reads a FeatureCollection, a single Feature or a bare geometry.
func LoadGeoJSON(path string) (Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return ParseGeoJSON(data)
}

// ParseGeoJSON decodes GeoJSON bytes. Feature properties are attached to each
// vertex of that feature.
func ParseGeoJSON(data []byte) (Data, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Data{}, fmt.Errorf("geojson: %w", err)
	}
	var d Data
	switch head.Type {
	case "":
		return Data{}, fmt.Errorf("invalid geojson: missing type")
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return Data{}, fmt.Errorf("geojson: %w", err)
		}
		for _, f := range fc.Features {
			d.addGeometry(f.Geometry, stringProps(f.Properties))
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return Data{}, fmt.Errorf("geojson: %w", err)
		}
		d.addGeometry(f.Geometry, stringProps(f.Properties))
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return Data{}, fmt.Errorf("geojson: %w", err)
		}
		d.addGeometry(g.Geometry(), nil)
	}
	if d.Len() == 0 {
		return Data{}, fmt.Errorf("geojson: %w", ErrNoCoordinates)
	}
	return d, nil
}

func stringProps(p geojson.Properties) map[string]string {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		if v == nil {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

func (d *Data) addGeometry(g orb.Geometry, props map[string]string) {
	switch g := g.(type) {
	case orb.Point:
		d.addPoint(Record{Lon: g.Lon(), Lat: g.Lat(), Props: props})
	case orb.MultiPoint:
		for _, p := range g {
			d.addPoint(Record{Lon: p.Lon(), Lat: p.Lat(), Props: props})
		}
	case orb.LineString:
		d.addLine(records(g, props))
	case orb.MultiLineString:
		for _, ls := range g {
			d.addLine(records(ls, props))
		}
	case orb.Ring:
		d.addLine(records(g, props))
	case orb.Polygon:
		if len(g) > 0 {
			d.addLine(records(g[0], props))
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			if len(poly) > 0 {
				d.addLine(records(poly[0], props))
			}
		}
	case orb.Collection:
		for _, sub := range g {
			d.addGeometry(sub, props)
		}
	}
}

func records(pts []orb.Point, props map[string]string) []Record {
	out := make([]Record, len(pts))
	for i, p := range pts {
		out[i] = Record{Lon: p.Lon(), Lat: p.Lat(), Props: props}
	}
	return out
}

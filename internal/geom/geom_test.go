package geom

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "hops.csv", "Hop,Latitude,Longitude,IP\n1,52.52,13.40,10.0.0.1\n2,bad,0,10.0.0.2\n3,48.85,2.35,192.0.2.7\n")
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Points) != 2 {
		t.Fatalf("points = %d, want 2 (bad row skipped)", len(d.Points))
	}
	p := d.Points[1]
	if p.Lat != 48.85 || p.Lon != 2.35 || p.Props["ip"] != "192.0.2.7" || p.Props["hop"] != "3" {
		t.Fatalf("second record = %+v", p)
	}
	vertices := d.Path()
	if len(vertices) != 2 || vertices[0].Props["hop"] != "1" || vertices[1].Lon != 2.35 {
		t.Fatalf("path = %+v", vertices)
	}
}

func TestLoadCSVMissingColumns(t *testing.T) {
	_, err := Load(writeFile(t, "x.csv", "a,b\n1,2\n"))
	if err == nil || !strings.Contains(err.Error(), "columns not found") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadKMLNestedPlacemarks(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Folder>
      <Placemark><name>gw</name><Point><coordinates>13.4,52.5,0</coordinates></Point></Placemark>
      <Placemark><name>path</name><LineString><coordinates>
        13.4,52.5 2.35,48.85 -0.12,51.5
      </coordinates></LineString></Placemark>
    </Folder>
  </Document>
</kml>`
	d, err := Load(writeFile(t, "trace.kml", body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Points) != 1 || d.Points[0].Props["name"] != "gw" {
		t.Fatalf("points = %+v", d.Points)
	}
	if len(d.Lines) != 1 || len(d.Lines[0]) != 3 {
		t.Fatalf("lines = %+v", d.Lines)
	}
	if got := d.Path(); len(got) != 4 || got[3].Lon != -0.12 {
		t.Fatalf("path = %+v", got)
	}
}

func TestParseGeoJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantPoints int
		wantLines  int
	}{
		{"bare point", `{"type":"Point","coordinates":[10,20]}`, 1, 0},
		{"feature line", `{"type":"Feature","properties":{"ip":"1.2.3.4"},"geometry":{"type":"LineString","coordinates":[[0,0],[10,10],[20,0]]}}`, 0, 1},
		{"collection", `{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"rtt":12.5},"geometry":{"type":"MultiPoint","coordinates":[[1,1],[2,2]]}},
			{"type":"Feature","properties":null,"geometry":{"type":"MultiLineString","coordinates":[[[0,0],[1,1]],[[2,2],[3,3]]]}},
			{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,0]],[[1,1],[2,1],[1,1]]]}}
		]}`, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseGeoJSON([]byte(tt.body))
			if err != nil {
				t.Fatalf("ParseGeoJSON: %v", err)
			}
			if len(d.Points) != tt.wantPoints || len(d.Lines) != tt.wantLines {
				t.Fatalf("points=%d lines=%d, want %d/%d", len(d.Points), len(d.Lines), tt.wantPoints, tt.wantLines)
			}
		})
	}

	d, err := ParseGeoJSON([]byte(tests[2].body))
	if err != nil {
		t.Fatal(err)
	}
	if d.Points[0].Props["rtt"] != "12.5" {
		t.Fatalf("props = %v", d.Points[0].Props)
	}
	if len(d.Lines[2]) != 4 {
		t.Fatalf("polygon outer ring has %d vertices, holes must be dropped", len(d.Lines[2]))
	}
}

func TestParseGeoJSONErrors(t *testing.T) {
	if _, err := ParseGeoJSON([]byte(`{"coordinates":[1,2]}`)); err == nil {
		t.Fatal("missing type accepted")
	}
	_, err := ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[]}`))
	if !errors.Is(err, ErrNoCoordinates) {
		t.Fatalf("empty collection err = %v", err)
	}
}

func TestParseWKT(t *testing.T) {
	tests := []struct {
		in         string
		wantPoints int
		wantLines  int
	}{
		{"POINT(13.4 52.5)", 1, 0},
		{"MULTIPOINT((1 2),(3 4))", 2, 0},
		{"LINESTRING(0 0,10 10,20 0)", 0, 1},
		{"MULTILINESTRING((0 0,1 1),(2 2,3 3))", 0, 2},
		{"POLYGON((0 0,4 0,4 4,0 0))", 0, 1},
	}
	for _, tt := range tests {
		d, err := ParseWKT(tt.in)
		if err != nil {
			t.Errorf("ParseWKT(%q): %v", tt.in, err)
			continue
		}
		if len(d.Points) != tt.wantPoints || len(d.Lines) != tt.wantLines {
			t.Errorf("ParseWKT(%q) points=%d lines=%d", tt.in, len(d.Points), len(d.Lines))
		}
	}
	if _, err := ParseWKT("CIRCLE(1 2)"); err == nil {
		t.Error("unknown geometry accepted")
	}
	if _, err := ParseWKT("  "); err == nil {
		t.Error("empty input accepted")
	}
}

func TestParseText(t *testing.T) {
	d, err := ParseText("# hops\n52.52, 13.40\n\n48.85 2.35\n-33.86,151.21\n")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if len(d.Points) != 3 || d.Points[0].Lat != 52.52 || d.Points[2].Lon != 151.21 {
		t.Fatalf("points = %+v", d.Points)
	}
	if d, err := ParseText("LINESTRING(0 0,1 1)"); err != nil || len(d.Lines) != 1 {
		t.Fatalf("wkt paste = %+v, %v", d, err)
	}
	if _, err := ParseText("52.5, 13.4\n91, 0"); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("out of range err = %v", err)
	}
}

func TestParseLatLon(t *testing.T) {
	tests := []struct {
		in      string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"37.3861, -122.0839", 37.3861, -122.0839, false},
		{"0 0", 0, 0, false},
		{"1,2,3", 0, 0, true},
		{"north, east", 0, 0, true},
		{"NaN, 0", 0, 0, true},
		{"10, 200", 0, 0, true},
	}
	for _, tt := range tests {
		lat, lon, err := ParseLatLon(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLatLon(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && (lat != tt.lat || lon != tt.lon) {
			t.Errorf("ParseLatLon(%q) = %v, %v", tt.in, lat, lon)
		}
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	if _, err := Load(writeFile(t, "notes.txt", "hello")); err == nil {
		t.Fatal("unsupported extension accepted")
	}
}

package feed

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"goglobe/internal/globe"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0088

func angleKm(a s1.Angle) float64 {
	return a.Radians() * EarthRadiusKm
}

// Distance is the great-circle distance between two points in kilometres.
func Distance(a, b globe.GeoPoint) float64 {
	return angleKm(s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon)))
}

// Leg is the hop-to-hop distance shown in the hop table.
type Leg struct {
	Km float64
	OK bool
}

// Legs measures each located hop from the previous located hop. The first
// located hop and every hop without coordinates get no leg.
func Legs(hops []Hop) []Leg {
	legs := make([]Leg, len(hops))
	var (
		prev    globe.GeoPoint
		hasPrev bool
	)
	for i, h := range hops {
		lat, lon, ok := h.LatLon()
		if !ok {
			continue
		}
		p := globe.GeoPoint{Lat: lat, Lon: lon}
		if hasPrev {
			legs[i] = Leg{Km: Distance(prev, p), OK: true}
		}
		prev, hasPrev = p, true
	}
	return legs
}

// PathLength sums the legs of a path.
func PathLength(points []globe.GeoPoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

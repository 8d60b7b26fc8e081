package geoip

import (
	"fmt"
	"net/netip"

	"github.com/oschwald/maxminddb-golang"
)

// CityDB reads a GeoLite2/GeoIP2 City database.
type CityDB struct {
	reader *maxminddb.Reader
}

type cityRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Country struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
	Location struct {
		Latitude  *float64 `maxminddb:"latitude"`
		Longitude *float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

func OpenCityDB(path string) (*CityDB, error) {
	r, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open %s: %w", path, err)
	}
	return &CityDB{reader: r}, nil
}

// Lookup returns the record for addr when it carries coordinates.
func (db *CityDB) Lookup(addr netip.Addr) (Location, bool) {
	if db == nil || db.reader == nil {
		return Location{}, false
	}
	var rec cityRecord
	if err := db.reader.Lookup(addr.AsSlice(), &rec); err != nil {
		return Location{}, false
	}
	if rec.Location.Latitude == nil || rec.Location.Longitude == nil {
		return Location{}, false
	}
	return Location{
		Lat:     *rec.Location.Latitude,
		Lon:     *rec.Location.Longitude,
		City:    rec.City.Names["en"],
		Country: rec.Country.Names["en"],
	}, true
}

func (db *CityDB) Close() error {
	if db == nil || db.reader == nil {
		return nil
	}
	return db.reader.Close()
}

package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"goglobe/internal/geom"
)

// FileSource loads a hop list once. .json files hold /trace output (or
// GeoJSON, detected by content); other extensions go through geom.Load.
type FileSource struct {
	Path string
}

func (s *FileSource) String() string { return s.Path }

func (s *FileSource) Stream(ctx context.Context, out chan<- Update) error {
	hops, err := LoadFile(s.Path)
	if err != nil {
		return err
	}
	return send(ctx, out, Update{Hops: hops, Replace: true, At: time.Now()})
}

// LoadFile reads hops from any supported file type.
func LoadFile(path string) ([]Hop, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataFeed, err)
		}
		if looksLikeGeoJSON(b) {
			d, err := geom.ParseGeoJSON(b)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrDataFeed, filepath.Base(path), err)
			}
			return FromRecords(d.Path()), nil
		}
		hops, err := Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		return hops, nil
	}
	d, err := geom.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataFeed, err)
	}
	return FromRecords(d.Path()), nil
}

// Extensions lists every file type LoadFile accepts.
func Extensions() []string {
	return append([]string{".json"}, geom.Extensions...)
}

// hop records never carry a top-level "type"
func looksLikeGeoJSON(b []byte) bool {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&head); err != nil {
		return false
	}
	return head.Type != ""
}

package globe

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrTextureLoad marks a texture that could not be read or parsed.
var ErrTextureLoad = errors.New("texture load failure")

// Color tags carried by cells. The painter maps them to terminal styles.
type Color uint8

const (
	ColorNone Color = iota
	ColorTarget
	ColorLine
	ColorNight
)

// Cell is one character of the rendered surface.
type Cell struct {
	Char  rune
	Color Color
}

// Blank is the empty cell; overlays never overwrite with it.
var Blank = Cell{Char: ' '}

func (c Cell) IsBlank() bool { return c.Char == ' ' || c.Char == 0 }

// Texture is an immutable equirectangular grid of glyphs. The last row and
// column of the source are trimmed and never sampled.
type Texture struct {
	rows  [][]rune
	sizeX int
	sizeY int
}

// ParseTexture builds a texture from newline-separated rows of glyphs.
// Every row must have the same rune count as row 0, except a final empty
// row left by a trailing newline.
func ParseTexture(text string) (*Texture, error) {
	lines := strings.Split(text, "\n")
	rows := make([][]rune, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if i == len(lines)-1 && line == "" && i > 0 {
			// sentinel row: counted in size, never sampled
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, []rune(line))
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rows, got %d", ErrTextureLoad, len(rows))
	}
	width := len(rows[0])
	if width < 2 {
		return nil, fmt.Errorf("%w: row 0 has %d columns", ErrTextureLoad, width)
	}
	for i, r := range rows {
		if r == nil && i == len(rows)-1 {
			continue
		}
		if len(r) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, row 0 has %d", ErrTextureLoad, i, len(r), width)
		}
	}
	return &Texture{rows: rows, sizeX: width - 1, sizeY: len(rows) - 1}, nil
}

// LoadTexture reads and parses a texture file.
func LoadTexture(path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTextureLoad, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid utf-8", ErrTextureLoad, path)
	}
	t, err := ParseTexture(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Size returns the sampled dimensions (columns-1, rows-1).
func (t *Texture) Size() (int, int) { return t.sizeX, t.sizeY }

// Sample looks up normalized theta in [0,1) and phi in [0,1].
// ok is false when the coordinates fall outside the sampled area.
func (t *Texture) Sample(theta, phi float64) (Cell, bool) {
	x := math.Floor(theta * float64(t.sizeX))
	y := math.Floor(phi * float64(t.sizeY))
	if !(x >= 0 && y >= 0 && x < float64(t.sizeX) && y < float64(t.sizeY)) {
		return Blank, false
	}
	return Cell{Char: t.rows[int(y)][int(x)]}, true
}

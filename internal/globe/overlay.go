package globe

import "math"

const (
	// SegmentSteps is the number of intervals between two consecutive points;
	// each pair yields SegmentSteps+1 samples.
	SegmentSteps = 100
	// MatchTolerance is the per-axis distance in normalized theta/phi within
	// which a cell counts as showing a point.
	MatchTolerance = 0.005

	TargetGlyph = '●'
	LineGlyph   = '.'
)

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Angular is a point in radians: Theta from longitude, Phi from colatitude.
type Angular struct {
	Theta float64
	Phi   float64
}

func (p GeoPoint) Angular() Angular {
	return Angular{
		Theta: (p.Lon + 180) * math.Pi / 180,
		Phi:   (90 - p.Lat) * math.Pi / 180,
	}
}

// normalized maps angular radians onto the renderer's [0,1] texture space.
func (a Angular) normalized() (float64, float64) {
	return a.Theta / (2 * math.Pi), a.Phi / math.Pi
}

// SampleLatLon inverts the overlay mapping for a rendered sample.
func SampleLatLon(s Sample) (lat, lon float64) {
	return 90 - s.Phi*180, s.Theta*360 - 180
}

// Interpolate returns SegmentSteps+1 points linearly spaced in (theta, phi)
// from start to end, both included.
func Interpolate(start, end Angular) []Angular {
	out := make([]Angular, 0, SegmentSteps+1)
	for i := 0; i <= SegmentSteps; i++ {
		f := float64(i) / SegmentSteps
		out = append(out, Angular{
			Theta: start.Theta + (end.Theta-start.Theta)*f,
			Phi:   start.Phi + (end.Phi-start.Phi)*f,
		})
	}
	return out
}

// Segments joins consecutive points in order. Fewer than two points give none.
func Segments(points []Angular) []Angular {
	if len(points) < 2 {
		return nil
	}
	out := make([]Angular, 0, (len(points)-1)*(SegmentSteps+1))
	for i := 0; i+1 < len(points); i++ {
		out = append(out, Interpolate(points[i], points[i+1])...)
	}
	return out
}

// Layers selects which overlay marks are drawn.
type Layers struct {
	Targets bool
	Lines   bool
}

var AllLayers = Layers{Targets: true, Lines: true}

// Overlay marks targets and the path between them on rendered frames.
// It is built from one snapshot of the point list and never mutates it.
type Overlay struct {
	targets angleIndex
	lines   angleIndex
	nLines  int
}

func NewOverlay(points []GeoPoint) *Overlay {
	ang := make([]Angular, len(points))
	for i, p := range points {
		ang[i] = p.Angular()
	}
	seg := Segments(ang)
	return &Overlay{
		targets: newAngleIndex(ang),
		lines:   newAngleIndex(seg),
		nLines:  len(seg),
	}
}

// LineSamples reports how many interpolated path points the overlay holds.
func (o *Overlay) LineSamples() int { return o.nLines }

// Classify returns the overlay cell for a sample: target, line, or blank.
func (o *Overlay) Classify(s Sample, layers Layers) Cell {
	if !s.Hit {
		return Blank
	}
	if layers.Targets && o.targets.near(s.Theta, s.Phi) {
		return Cell{Char: TargetGlyph, Color: ColorTarget}
	}
	if layers.Lines && o.lines.near(s.Theta, s.Phi) {
		return Cell{Char: LineGlyph, Color: ColorLine}
	}
	return Blank
}

// Draw builds the overlay grid for a rendered base frame.
func (o *Overlay) Draw(base *Frame, layers Layers) *Frame {
	ov := NewFrame(base.W, base.H)
	for i, s := range base.Samples {
		ov.Cells[i] = o.Classify(s, layers)
	}
	return ov
}

// Composite copies every non-blank overlay cell over base.
func Composite(base, overlay *Frame) {
	for i, c := range overlay.Cells {
		if i < len(base.Cells) && !c.IsBlank() {
			base.Cells[i] = c
		}
	}
}

// Apply draws the overlay for base and composites it in place.
func (o *Overlay) Apply(base *Frame, layers Layers) {
	Composite(base, o.Draw(base, layers))
}

type bucket struct{ t, p int }

// angleIndex buckets normalized points on a MatchTolerance grid so a lookup
// only scans the 3×3 neighborhood of its own bucket.
type angleIndex map[bucket][][2]float64

func bucketOf(theta, phi float64) bucket {
	return bucket{int(math.Floor(theta / MatchTolerance)), int(math.Floor(phi / MatchTolerance))}
}

func newAngleIndex(points []Angular) angleIndex {
	idx := make(angleIndex, len(points))
	for _, a := range points {
		t, p := a.normalized()
		k := bucketOf(t, p)
		idx[k] = append(idx[k], [2]float64{t, p})
	}
	return idx
}

func (idx angleIndex) near(theta, phi float64) bool {
	if len(idx) == 0 {
		return false
	}
	k := bucketOf(theta, phi)
	for dt := -1; dt <= 1; dt++ {
		for dp := -1; dp <= 1; dp++ {
			for _, q := range idx[bucket{k.t + dt, k.p + dp}] {
				if math.Abs(theta-q[0]) < MatchTolerance && math.Abs(phi-q[1]) < MatchTolerance {
					return true
				}
			}
		}
	}
	return false
}

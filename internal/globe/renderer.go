package globe

import (
	"fmt"
	"math"
	"strings"

	"goglobe/internal/vecmath"
)

const (
	// phi values past this point are squeezed toward the south pole
	poleCompressionStart = 0.85
	poleCompressionScale = 0.94
	// below this luminance the night texture is used, when one is loaded
	nightThreshold = 0.5
)

var lightPos = vecmath.Vec3{Y: 999999}

// Camera is a world-space eye position looking down -Z.
type Camera struct{ X, Y, Z float64 }

func (c Camera) vec() vecmath.Vec3 { return vecmath.Vec3{X: c.X, Y: c.Y, Z: c.Z} }

// Sample is the texture coordinate a cell's ray hit, if any.
type Sample struct {
	Theta     float64
	Phi       float64
	Luminance float64
	Hit       bool
}

// Frame is a W×H grid of cells plus the samples that produced them.
type Frame struct {
	W, H    int
	Cells   []Cell
	Samples []Sample
}

func NewFrame(w, h int) *Frame {
	f := &Frame{W: w, H: h, Cells: make([]Cell, w*h), Samples: make([]Sample, w*h)}
	for i := range f.Cells {
		f.Cells[i] = Blank
	}
	return f
}

func (f *Frame) At(x, y int) Cell { return f.Cells[y*f.W+x] }

func (f *Frame) SampleAt(x, y int) Sample {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return Sample{}
	}
	return f.Samples[y*f.W+x]
}

// Set writes a cell, ignoring coordinates outside the frame.
func (f *Frame) Set(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return
	}
	f.Cells[y*f.W+x] = c
}

// Lines returns the frame as plain text rows.
func (f *Frame) Lines() []string {
	out := make([]string, f.H)
	var b strings.Builder
	for y := 0; y < f.H; y++ {
		b.Reset()
		for x := 0; x < f.W; x++ {
			b.WriteRune(f.At(x, y).Char)
		}
		out[y] = b.String()
	}
	return out
}

// Renderer raycasts a textured sphere of fixed radius centered at the origin.
type Renderer struct {
	radius float64
	day    *Texture
	night  *Texture
}

// NewRenderer validates opts and returns a renderer for them.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Day == nil {
		return nil, fmt.Errorf("%w: no day texture", ErrTextureLoad)
	}
	if opts.Radius <= 0 {
		return nil, fmt.Errorf("globe: radius must be positive, got %v", opts.Radius)
	}
	return &Renderer{radius: opts.Radius, day: opts.Day, night: opts.Night}, nil
}

func (r *Renderer) Radius() float64 { return r.radius }

// Render produces the base layer for a w×h grid seen from cam with the globe
// turned by rot. Cells whose ray misses the sphere stay blank and record no sample.
func (r *Renderer) Render(w, h int, cam Camera, rot vecmath.Quat) *Frame {
	f := NewFrame(w, h)
	o := cam.vec()
	oo := vecmath.Dot(o, o)
	halfW, halfH := float64(w)/2, float64(h)/2
	for yi := 0; yi < h; yi++ {
		for xi := 0; xi < w; xi++ {
			u := vecmath.Normalize(vecmath.Vec3{
				X: -(float64(xi) - halfW + 0.5) / halfW,
				Y: (float64(yi) - halfH + 0.5) / halfH,
				Z: -1,
			})
			inter, ok := intersect(o, oo, u, r.radius)
			if !ok {
				continue
			}
			lum := luminance(inter)
			theta, phi := r.textureCoords(vecmath.Rotate(inter, rot))

			tex := r.day
			color := ColorNone
			if r.night != nil && lum < nightThreshold {
				tex, color = r.night, ColorNight
			}
			if c, ok := tex.Sample(theta, phi); ok {
				c.Color = color
				f.Set(xi, yi, c)
			}
			f.Samples[yi*w+xi] = Sample{Theta: theta, Phi: phi, Luminance: lum, Hit: true}
		}
	}
	return f
}

// intersect returns the near hit of ray o+t·u with a sphere of radius at the origin.
func intersect(o vecmath.Vec3, oo float64, u vecmath.Vec3, radius float64) (vecmath.Vec3, bool) {
	b := vecmath.Dot(u, o)
	disc := b*b - oo + radius*radius
	if disc < 0 {
		return vecmath.Vec3{}, false
	}
	t := -math.Sqrt(disc) - b
	return vecmath.Add(o, vecmath.Scale(u, t)), true
}

func luminance(inter vecmath.Vec3) float64 {
	n := vecmath.Normalize(inter)
	l := vecmath.Normalize(vecmath.Sub(lightPos, inter))
	return vecmath.Clamp(5*vecmath.Dot(n, l)+0.5, 0, 1)
}

// textureCoords maps a point on the rotated sphere to normalized (theta, phi).
func (r *Renderer) textureCoords(p vecmath.Vec3) (float64, float64) {
	phi := compressPole(-p.Z/r.radius/2 + 0.5)
	theta := math.Atan2(p.Y, p.X)/math.Pi + 0.5
	theta -= math.Floor(theta)
	if theta >= 1 {
		// -tiny - floor(-tiny) rounds to exactly 1
		theta = 0
	}
	return theta, phi
}

func compressPole(phi float64) float64 {
	if phi > poleCompressionStart {
		return poleCompressionStart + (phi-poleCompressionStart)*poleCompressionScale
	}
	return phi
}

package globe

import (
	"math"

	"goglobe/internal/vecmath"
)

const (
	DefaultRadius      = 30
	DefaultCameraZ     = 50
	DefaultMinDistance = 40
	DefaultMaxDistance = 80
	DefaultSensitivity = 0.01
	DefaultRotationX   = 280
	DefaultRotationY   = 120
)

// Options configures a Renderer and its ViewerState.
type Options struct {
	Camera Camera
	Radius float64
	Day    *Texture
	Night  *Texture // optional; shown where the surface faces away from the light

	// initial orientation, degrees about X then Y
	RotationX float64
	RotationY float64

	MinDistance float64
	MaxDistance float64
	Sensitivity float64 // radians per dragged pixel
}

func DefaultOptions() Options {
	return Options{
		Camera:      Camera{Z: DefaultCameraZ},
		Radius:      DefaultRadius,
		RotationX:   DefaultRotationX,
		RotationY:   DefaultRotationY,
		MinDistance: DefaultMinDistance,
		MaxDistance: DefaultMaxDistance,
		Sensitivity: DefaultSensitivity,
	}
}

// InitialRotation composes the X and Y start angles into a quaternion.
func (o Options) InitialRotation() vecmath.Quat {
	return vecmath.QuatMul(
		vecmath.QuatFromAxisAngle(vecmath.AxisX, o.RotationX*math.Pi/180),
		vecmath.QuatFromAxisAngle(vecmath.AxisY, o.RotationY*math.Pi/180),
	)
}

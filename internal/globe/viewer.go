package globe

import (
	"math"

	"goglobe/internal/vecmath"
)

// MaxTilt bounds the vertical tilt accumulator so the view never flips over a pole.
const MaxTilt = math.Pi/2 - 0.5

// ViewerState is the mutable orientation and camera of one globe view.
// It is owned by a single frame loop and is not safe for concurrent use.
type ViewerState struct {
	rotation     vecmath.Quat
	tilt         float64
	camera       Camera
	minDist      float64
	maxDist      float64
	sensitivity  float64
	autoRotating bool
	dragging     bool
}

// NewViewerState starts from opts' camera and initial rotation with auto-rotation on.
// A camera distance outside a configured zoom range is clamped into it.
func NewViewerState(opts Options) *ViewerState {
	v := &ViewerState{
		rotation:     opts.InitialRotation(),
		camera:       opts.Camera,
		minDist:      opts.MinDistance,
		maxDist:      opts.MaxDistance,
		sensitivity:  opts.Sensitivity,
		autoRotating: true,
	}
	if v.sensitivity == 0 {
		v.sensitivity = DefaultSensitivity
	}
	if v.maxDist < v.minDist {
		v.minDist, v.maxDist = v.maxDist, v.minDist
	}
	if v.maxDist > 0 {
		v.Zoom(v.camera.Z)
	}
	return v
}

func (v *ViewerState) Rotation() vecmath.Quat { return v.rotation }

func (v *ViewerState) Tilt() float64 { return v.tilt }

func (v *ViewerState) Camera() Camera { return v.camera }

func (v *ViewerState) AutoRotating() bool { return v.autoRotating }

func (v *ViewerState) Dragging() bool { return v.dragging }

// Rotate applies a drag of (dx, dy) device pixels. The pitch part is the
// change in clamped tilt, so drags past the limit add no pitch; yaw is never clamped.
func (v *ViewerState) Rotate(dx, dy float64) {
	tilt := vecmath.Clamp(v.tilt+dy*v.sensitivity, -MaxTilt, MaxTilt)
	pitch := vecmath.QuatFromAxisAngle(vecmath.AxisX, tilt-v.tilt)
	yaw := vecmath.QuatFromAxisAngle(vecmath.AxisY, dx*v.sensitivity)
	v.rotation = vecmath.QuatMul(v.rotation, vecmath.QuatMul(yaw, pitch))
	v.tilt = tilt
}

// BeginDrag stops auto-rotation. Only SetAutoRotating turns it back on.
func (v *ViewerState) BeginDrag() {
	v.dragging = true
	v.autoRotating = false
}

func (v *ViewerState) EndDrag() { v.dragging = false }

func (v *ViewerState) SetAutoRotating(on bool) { v.autoRotating = on }

// AutoRotate advances the yaw by speed radians when auto-rotation is on and
// no drag is in progress. It reports whether the rotation changed.
func (v *ViewerState) AutoRotate(speed float64) bool {
	if !v.autoRotating || v.dragging {
		return false
	}
	v.rotation = vecmath.QuatMul(v.rotation, vecmath.QuatFromAxisAngle(vecmath.AxisY, speed))
	return true
}

// Zoom sets the camera distance, clamped to the configured range.
func (v *ViewerState) Zoom(distance float64) {
	v.camera.Z = vecmath.Clamp(distance, v.minDist, v.maxDist)
}

// ZoomRange returns the allowed camera distances.
func (v *ViewerState) ZoomRange() (float64, float64) { return v.minDist, v.maxDist }

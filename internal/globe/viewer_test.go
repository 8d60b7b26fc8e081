package globe

import (
	"math"
	"testing"

	"goglobe/internal/vecmath"
)

func quatNear(a, b vecmath.Quat) bool {
	const tol = 1e-12
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol && math.Abs(a.W-b.W) < tol
}

func TestInitialRotationIsUnit(t *testing.T) {
	v := NewViewerState(DefaultOptions())
	if n := vecmath.Norm(v.Rotation()); math.Abs(n-1) > 1e-12 {
		t.Fatalf("initial rotation norm = %v", n)
	}
	if !v.AutoRotating() {
		t.Fatal("auto-rotation should start enabled")
	}
	if v.Camera().Z != DefaultCameraZ {
		t.Fatalf("camera z = %v", v.Camera().Z)
	}
}

func TestRotateTiltClamp(t *testing.T) {
	v := NewViewerState(DefaultOptions())
	for i := 0; i < 50; i++ {
		v.Rotate(0, 500)
		if v.Tilt() > MaxTilt {
			t.Fatalf("tilt %v exceeded %v", v.Tilt(), MaxTilt)
		}
	}
	if v.Tilt() != MaxTilt {
		t.Fatalf("tilt = %v, want clamp %v", v.Tilt(), MaxTilt)
	}

	before := v.Rotation()
	v.Rotate(0, 500)
	if !quatNear(before, v.Rotation()) {
		t.Fatalf("rotation changed at the clamp: %v -> %v", before, v.Rotation())
	}

	// yaw still accumulates while pitch is pinned
	before = v.Rotation()
	v.Rotate(30, 500)
	want := vecmath.QuatMul(before, vecmath.QuatFromAxisAngle(vecmath.AxisY, 30*DefaultSensitivity))
	if !quatNear(want, v.Rotation()) {
		t.Fatalf("rotation = %v, want yaw-only %v", v.Rotation(), want)
	}

	for i := 0; i < 50; i++ {
		v.Rotate(0, -500)
	}
	if v.Tilt() != -MaxTilt {
		t.Fatalf("tilt = %v, want %v", v.Tilt(), -MaxTilt)
	}
}

func TestRotateComposesYawThenPitch(t *testing.T) {
	v := NewViewerState(DefaultOptions())
	start := v.Rotation()
	v.Rotate(12, -7)
	yaw := vecmath.QuatFromAxisAngle(vecmath.AxisY, 12*DefaultSensitivity)
	pitch := vecmath.QuatFromAxisAngle(vecmath.AxisX, -7*DefaultSensitivity)
	want := vecmath.QuatMul(start, vecmath.QuatMul(yaw, pitch))
	if !quatNear(want, v.Rotation()) {
		t.Fatalf("rotation = %v, want %v", v.Rotation(), want)
	}
}

func TestAutoRotateStopsOnDrag(t *testing.T) {
	v := NewViewerState(DefaultOptions())
	if !v.AutoRotate(-0.003) {
		t.Fatal("auto-rotation should apply before any drag")
	}
	v.BeginDrag()
	before := v.Rotation()
	if v.AutoRotate(-0.003) || !quatNear(before, v.Rotation()) {
		t.Fatal("auto-rotation applied during drag")
	}
	v.EndDrag()
	if v.AutoRotate(-0.003) {
		t.Fatal("auto-rotation re-enabled itself after drag")
	}
	v.SetAutoRotating(true)
	if !v.AutoRotate(-0.003) {
		t.Fatal("auto-rotation not re-enabled explicitly")
	}
	want := vecmath.QuatMul(before, vecmath.QuatFromAxisAngle(vecmath.AxisY, -0.003))
	if !quatNear(want, v.Rotation()) {
		t.Fatalf("rotation = %v, want %v", v.Rotation(), want)
	}
}

func TestZoomClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{55, 55},
		{1000, DefaultMaxDistance},
		{-3, DefaultMinDistance},
		{DefaultMinDistance, DefaultMinDistance},
	}
	v := NewViewerState(DefaultOptions())
	rot := v.Rotation()
	for _, tt := range tests {
		v.Zoom(tt.in)
		first := v.Camera().Z
		v.Zoom(tt.in)
		if first != tt.want || v.Camera().Z != first {
			t.Errorf("Zoom(%v) = %v then %v, want %v", tt.in, first, v.Camera().Z, tt.want)
		}
	}
	if v.Rotation() != rot {
		t.Fatal("zoom changed the rotation")
	}

	prev := math.Inf(-1)
	for d := 0.0; d <= 120; d += 0.5 {
		v.Zoom(d)
		if v.Camera().Z < prev {
			t.Fatalf("zoom not monotonic at %v", d)
		}
		prev = v.Camera().Z
	}
}

func TestInitialCameraClampedToZoomRange(t *testing.T) {
	tests := []struct {
		z, want float64
	}{
		{100, DefaultMaxDistance},
		{10, DefaultMinDistance},
		{DefaultCameraZ, DefaultCameraZ},
	}
	for _, tt := range tests {
		opts := DefaultOptions()
		opts.Camera.Z = tt.z
		if got := NewViewerState(opts).Camera().Z; got != tt.want {
			t.Errorf("camera z %v starts at %v, want %v", tt.z, got, tt.want)
		}
	}
}

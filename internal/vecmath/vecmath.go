// Package vecmath provides the small vector and quaternion toolkit used by the globe renderer.
package vecmath

import "math"

// Vec3 is a point or direction in world space.
type Vec3 struct{ X, Y, Z float64 }

// Quat is a rotation quaternion (X, Y, Z imaginary, W real).
type Quat struct{ X, Y, Z, W float64 }

// Identity is the no-op rotation.
var Identity = Quat{W: 1}

// Axes used for yaw/pitch increments.
var (
	AxisX = Vec3{X: 1}
	AxisY = Vec3{Y: 1}
	AxisZ = Vec3{Z: 1}
)

func Add(a, b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns to - from.
func Sub(to, from Vec3) Vec3 { return Vec3{to.X - from.X, to.Y - from.Y, to.Z - from.Z} }

func Scale(v Vec3, s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func Dot(a, b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func Length(v Vec3) float64 { return math.Sqrt(Dot(v, v)) }

// Normalize returns v scaled to unit length. A zero vector is returned unchanged.
func Normalize(v Vec3) Vec3 {
	l := Length(v)
	if l == 0 {
		return v
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// QuatFromAxisAngle builds a rotation of angle radians about a unit axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s := math.Sin(angle / 2)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, math.Cos(angle / 2)}
}

// QuatMul returns the Hamilton product q1*q2.
func QuatMul(q1, q2 Quat) Quat {
	return Quat{
		X: q1.W*q2.X + q1.X*q2.W + q1.Y*q2.Z - q1.Z*q2.Y,
		Y: q1.W*q2.Y - q1.X*q2.Z + q1.Y*q2.W + q1.Z*q2.X,
		Z: q1.W*q2.Z + q1.X*q2.Y - q1.Y*q2.X + q1.Z*q2.W,
		W: q1.W*q2.W - q1.X*q2.X - q1.Y*q2.Y - q1.Z*q2.Z,
	}
}

// Conjugate is the inverse of a unit quaternion.
func Conjugate(q Quat) Quat { return Quat{-q.X, -q.Y, -q.Z, q.W} }

// Rotate applies q to v as q*v*q⁻¹, treating v as a pure quaternion. q must be unit.
func Rotate(v Vec3, q Quat) Vec3 {
	p := QuatMul(QuatMul(q, Quat{v.X, v.Y, v.Z, 0}), Conjugate(q))
	return Vec3{p.X, p.Y, p.Z}
}

// Norm is the quaternion magnitude; unit rotations have norm 1.
func Norm(q Quat) float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

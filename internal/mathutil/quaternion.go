package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat is a rotation quaternion (W + V).
type Quat = mgl64.Quat

// Identity is the no-rotation quaternion.
func Identity() Quat {
	return mgl64.QuatIdent()
}

// EulerToQuat converts Euler angles (radians) to a unit quaternion using
// intrinsic XYZ order: the result is Rx·Ry·Rz.
func EulerToQuat(rx, ry, rz float64) Quat {
	cx, sx := math.Cos(rx*0.5), math.Sin(rx*0.5)
	cy, sy := math.Cos(ry*0.5), math.Sin(ry*0.5)
	cz, sz := math.Cos(rz*0.5), math.Sin(rz*0.5)

	return Quat{
		W: cx*cy*cz - sx*sy*sz,
		V: Vec3{
			sx*cy*cz + cx*sy*sz, // x
			cx*sy*cz - sx*cy*sz, // y
			cx*cy*sz + sx*sy*cz, // z
		},
	}
}

// Slerp interpolates from a toward b by t along the shorter arc.
// The result is always renormalised.
func Slerp(a, b Quat, t float64) Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	q := mgl64.QuatSlerp(a, b, t)
	return Normalize(q)
}

// Normalize returns q scaled to unit length, or identity for a zero or non-finite quaternion.
func Normalize(q Quat) Quat {
	l := q.Len()
	if l < 1e-12 || !Finite(l) {
		return Identity()
	}
	return q.Scale(1 / l)
}

// Mat3ToQuat converts a pure rotation given by its basis columns to a quaternion.
func Mat3ToQuat(x, y, z Vec3) Quat {
	m00, m01, m02 := x[0], y[0], z[0]
	m10, m11, m12 := x[1], y[1], z[1]
	m20, m21, m22 := x[2], y[2], z[2]

	trace := m00 + m11 + m22
	var q Quat
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = Quat{W: 0.25 / s, V: Vec3{(m21 - m12) * s, (m02 - m20) * s, (m10 - m01) * s}}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = Quat{W: (m21 - m12) / s, V: Vec3{0.25 * s, (m01 + m10) / s, (m02 + m20) / s}}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = Quat{W: (m02 - m20) / s, V: Vec3{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s}}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = Quat{W: (m10 - m01) / s, V: Vec3{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s}}
	}
	return Normalize(q)
}

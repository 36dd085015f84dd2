package mathutil

import "math"

// Up is the world up axis used by LookAt.
var Up = Vec3{0, 1, 0}

// LookAt returns the orientation that points an object's local +Z axis from
// `from` toward `target`, keeping local +Y as close to world up as possible.
func LookAt(from, target Vec3) Quat {
	z := target.Sub(from)
	if z.Len() < 1e-12 {
		z = Vec3{0, 0, 1}
	}
	z = z.Normalize()

	x := Up.Cross(z)
	if x.Len() < 1e-12 {
		// z parallel to up: nudge off the pole
		if math.Abs(Up[2]) == 1 {
			z[0] += 0.0001
		} else {
			z[2] += 0.0001
		}
		z = z.Normalize()
		x = Up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	return Mat3ToQuat(x, y, z)
}

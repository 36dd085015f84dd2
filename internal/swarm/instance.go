// Package swarm owns the sword instances and animates them toward
// mode-specific target poses.
package swarm

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"hand-sword-fx/internal/mathutil"
	"hand-sword-fx/internal/palette"
)

// Rand is the random source the animator draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Params are drawn once per instance when the swarm is allocated.
type Params struct {
	Phase  float64       // radians, [0, 2π)
	Offset mathutil.Vec3 // FOLLOW offset: ±5 on x/y, ±2.5 on z
	Speed  float64       // [0.05, 0.1)
	Spin   float64       // [-0.05, 0.05)
}

// NewParams draws a fresh set of static parameters.
func NewParams(r Rand) Params {
	return Params{
		Speed: 0.05 + r.Float64()*0.05,
		Offset: mathutil.Vec3{
			(r.Float64() - 0.5) * 10,
			(r.Float64() - 0.5) * 10,
			(r.Float64() - 0.5) * 5,
		},
		Spin:  (r.Float64() - 0.5) * 0.1,
		Phase: r.Float64() * math.Pi * 2,
	}
}

// Pose is a rigid transform.
type Pose struct {
	Position    mathutil.Vec3
	Orientation mathutil.Quat
}

// Instance is the published state of one sword.
type Instance struct {
	Pose
	Color palette.RGB
}

// Matrix composes the instance transform (translation · rotation).
func (p Pose) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(p.Position[0], p.Position[1], p.Position[2]).Mul4(p.Orientation.Mat4())
}

// state is the animator-private record of one instance.
type state struct {
	pose   Pose
	color  palette.RGB
	params Params
}

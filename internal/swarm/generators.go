package swarm

import (
	"math"

	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/mathutil"
)

type vec3 = mathutil.Vec3

// Target carries what a mode generator may use to place one instance.
type Target struct {
	Index   int
	Count   int
	Time    float64
	Anchor  vec3
	Current vec3 // the instance's position before this frame
	Params  Params
	Rand    Rand
}

func (t Target) frac() float64 {
	if t.Count <= 0 {
		return 0
	}
	return float64(t.Index) / float64(t.Count)
}

// jitter returns a uniform draw in [-span/2, span/2).
func (t Target) jitter(span float64) float64 {
	return (t.Rand.Float64() - 0.5) * span
}

// Generator computes one instance's target pose. Generators are pure apart
// from draws on Target.Rand.
type Generator func(t Target) Pose

var generators = map[gesture.Mode]Generator{
	gesture.Idle:    idlePose,
	gesture.Shield:  shieldPose,
	gesture.Attack:  attackPose,
	gesture.Spread:  spreadPose,
	gesture.Rock:    rockPose,
	gesture.Victory: victoryPose,
	gesture.OK:      okPose,
	gesture.Thumb:   thumbPose,
	gesture.Follow:  followPose,
}

// TargetPose dispatches to the generator of mode. Unknown modes follow.
func TargetPose(mode gesture.Mode, t Target) Pose {
	gen, ok := generators[mode]
	if !ok {
		gen = followPose
	}
	return gen(t)
}

func idlePose(t Target) Pose {
	ph := t.Params.Phase
	return Pose{
		Position: vec3{
			math.Sin(t.Time*0.5+ph) * 5,
			math.Cos(t.Time*0.3+ph) * 3,
			math.Sin(t.Time*0.2+ph)*2 - 5,
		},
		Orientation: mathutil.LookAt(t.Current, vec3{0, 0, 10}),
	}
}

func shieldPose(t Target) Pose {
	const radius = 3
	angle := t.Time*2 + t.Params.Phase
	pos := t.Anchor.Add(vec3{
		math.Cos(angle) * radius,
		math.Sin(angle) * radius,
		math.Sin(angle * 2),
	})
	return Pose{Position: pos, Orientation: mathutil.LookAt(pos, t.Anchor)}
}

func attackPose(t Target) Pose {
	pos := t.Anchor.Add(vec3{t.jitter(2), t.jitter(2), t.jitter(5) - 2})
	return Pose{
		Position:    pos,
		Orientation: mathutil.LookAt(pos, vec3{t.Anchor[0], t.Anchor[1], -100}),
	}
}

func spreadPose(t Target) Pose {
	const width = 8
	pos := t.Anchor.Add(vec3{t.jitter(width * 2), t.jitter(width), -2})
	return Pose{Position: pos, Orientation: mathutil.LookAt(pos, t.Anchor)}
}

func rockPose(t Target) Pose {
	const shake = 2
	pos := t.Anchor.Add(vec3{t.jitter(shake), t.jitter(shake), t.jitter(shake)})
	rx := t.Rand.Float64() * math.Pi
	ry := t.Rand.Float64() * math.Pi
	rz := t.Rand.Float64() * math.Pi
	return Pose{Position: pos, Orientation: mathutil.EulerToQuat(rx, ry, rz)}
}

func victoryPose(t Target) Pose {
	const (
		radius = 2
		height = 10
	)
	f := t.frac()
	angle := t.Time*2 + f*math.Pi*4
	pos := t.Anchor.Add(vec3{
		math.Cos(angle) * radius,
		(f-0.5)*height + math.Sin(t.Time)*2,
		math.Sin(angle) * radius,
	})
	return Pose{Position: pos, Orientation: mathutil.LookAt(pos, pos.Add(vec3{0, 10, 0}))}
}

func okPose(t Target) Pose {
	const radius = 4
	angle := t.Time + float64(t.Index)
	pos := t.Anchor.Add(vec3{math.Cos(angle) * radius, math.Sin(angle) * radius, 0})
	return Pose{Position: pos, Orientation: mathutil.LookAt(pos, t.Anchor)}
}

func thumbPose(t Target) Pose {
	const spacing = 1.0
	x := (float64(t.Index) - float64(t.Count)/2) * spacing
	pos := t.Anchor.Add(vec3{x, 3, -2})
	return Pose{Position: pos, Orientation: mathutil.LookAt(pos, vec3{pos[0], pos[1], 100})}
}

func followPose(t Target) Pose {
	pos := t.Anchor.Add(t.Params.Offset)
	return Pose{Position: pos, Orientation: mathutil.LookAt(pos, t.Anchor)}
}

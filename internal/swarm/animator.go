package swarm

import (
	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/mathutil"
	"hand-sword-fx/internal/palette"
)

// RockMoveSpeed is the fixed position smoothing rate of ROCK, fast enough to
// read as shaking.
const RockMoveSpeed = 0.5

// Settings are the per-frame tunables.
type Settings struct {
	Count     int
	MoveSpeed float64
	RotSpeed  float64
}

// SpeedFor returns the position smoothing rate of mode.
func (s Settings) SpeedFor(mode gesture.Mode) float64 {
	if mode == gesture.Rock {
		return RockMoveSpeed
	}
	return s.MoveSpeed
}

// Input is one frame's worth of drive for the animator.
type Input struct {
	Mode     gesture.Mode
	Anchor   mathutil.Vec3
	Time     float64
	Settings Settings
	Palette  *palette.Palette
}

// Animator owns the instance set. It is driven by a single goroutine.
type Animator struct {
	rnd       Rand
	instances []state
}

// NewAnimator creates an empty swarm; the first Step allocates it.
func NewAnimator(rnd Rand) *Animator {
	return &Animator{rnd: rnd}
}

// Len returns the current instance count.
func (a *Animator) Len() int {
	return len(a.instances)
}

// Params returns the static parameters of instance i.
func (a *Animator) Params(i int) Params {
	return a.instances[i].params
}

// Resize reallocates the swarm when count differs from the current size.
// New instances start at the origin with identity orientation and freshly
// drawn parameters; previous smoothed state is discarded.
func (a *Animator) Resize(count int) bool {
	if count < 0 {
		count = 0
	}
	if count == len(a.instances) && a.instances != nil {
		return false
	}
	inst := make([]state, count)
	for i := range inst {
		inst[i] = state{
			pose:   Pose{Orientation: mathutil.Identity()},
			params: NewParams(a.rnd),
		}
	}
	a.instances = inst
	return true
}

// Step advances every instance one frame and returns a freshly written frame.
func (a *Animator) Step(in Input) *Frame {
	a.Resize(in.Settings.Count)

	n := len(a.instances)
	frame := &Frame{
		Time:      in.Time,
		Mode:      in.Mode,
		Anchor:    in.Anchor,
		Instances: make([]Instance, n),
	}
	speed := in.Settings.SpeedFor(in.Mode)

	for i := range a.instances {
		st := &a.instances[i]
		target := TargetPose(in.Mode, Target{
			Index:   i,
			Count:   n,
			Time:    in.Time,
			Anchor:  in.Anchor,
			Current: st.pose.Position,
			Params:  st.params,
			Rand:    a.rnd,
		})
		st.pose = Smooth(st.pose, target, speed, in.Settings.RotSpeed)

		if in.Palette != nil {
			st.color = in.Palette.Color(in.Mode, in.Time, i, n, a.rnd)
		}
		frame.Instances[i] = Instance{Pose: st.pose, Color: st.color}
	}
	return frame
}

// Snapshot copies the current instance states without advancing them.
func (a *Animator) Snapshot() []Instance {
	out := make([]Instance, len(a.instances))
	for i, st := range a.instances {
		out[i] = Instance{Pose: st.pose, Color: st.color}
	}
	return out
}

// Smooth moves cur toward target: position by linear interpolation at
// moveRate, orientation by spherical interpolation at rotRate.
func Smooth(cur, target Pose, moveRate, rotRate float64) Pose {
	return Pose{
		Position:    mathutil.Lerp(cur.Position, target.Position, moveRate),
		Orientation: mathutil.Slerp(cur.Orientation, target.Orientation, rotRate),
	}
}

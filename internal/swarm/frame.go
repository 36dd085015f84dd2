package swarm

import (
	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/mathutil"
)

// Frame is a complete, immutable per-frame output buffer. Sinks must not
// modify it.
type Frame struct {
	Seq       uint64
	Time      float64
	Mode      gesture.Mode
	Anchor    mathutil.Vec3
	Held      bool // input was malformed; poses are the previous ones
	Instances []Instance
}

// Len returns the number of instances.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Instances)
}

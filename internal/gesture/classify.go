package gesture

import "math"

const (
	okPinchDist   = 0.05
	thumbUpOffset = 0.1
	spreadMinOpen = 4
)

// Fingers holds the per-finger "open" predicates of a pose.
type Fingers struct {
	Index  bool `json:"index"`
	Middle bool `json:"middle"`
	Ring   bool `json:"ring"`
	Pinky  bool `json:"pinky"`
}

// OpenCount counts open fingers among index, middle, ring and pinky.
func (f Fingers) OpenCount() int {
	n := 0
	for _, open := range [4]bool{f.Index, f.Middle, f.Ring, f.Pinky} {
		if open {
			n++
		}
	}
	return n
}

// Features are the measurements the classifier decides on.
type Features struct {
	Fingers
	ThumbIndexDist      float64 `json:"thumb_index_dist"`
	ThumbVerticalOffset float64 `json:"thumb_vertical_offset"`
}

// Measure computes classifier features. A finger is open when its tip is
// above its PIP joint in image space (smaller y).
func Measure(p *HandPose) Features {
	lm := p.Landmarks
	open := func(tip, pip int) bool { return lm[tip].Y < lm[pip].Y }

	thumb, index := lm[ThumbTip], lm[IndexTip]
	return Features{
		Fingers: Fingers{
			Index:  open(IndexTip, IndexPIP),
			Middle: open(MiddleTip, MiddlePIP),
			Ring:   open(RingTip, RingPIP),
			Pinky:  open(PinkyTip, PinkyPIP),
		},
		ThumbIndexDist:      math.Hypot(thumb.X-index.X, thumb.Y-index.Y),
		ThumbVerticalOffset: math.Abs(thumb.Y - lm[Wrist].Y),
	}
}

// Classify maps a snapshot to a gesture mode. No hand, or a pose that fails
// validation, is IDLE.
//
// Rules are evaluated in a fixed priority order; the first match wins.
func Classify(p *HandPose) Mode {
	if p == nil || p.Validate() != nil {
		return Idle
	}
	return Decide(Measure(p))
}

// Decide applies the ordered gesture rules to measured features.
func Decide(f Features) Mode {
	open := f.OpenCount()
	switch {
	case f.ThumbIndexDist < okPinchDist && f.Middle && f.Ring && f.Pinky:
		return OK
	case f.Index && f.Pinky && !f.Middle && !f.Ring:
		return Rock
	case f.Index && f.Middle && !f.Ring && !f.Pinky:
		return Victory
	case open == 0 && f.ThumbVerticalOffset > thumbUpOffset:
		return Thumb
	case open >= spreadMinOpen:
		return Spread
	case open == 0:
		return Shield
	case f.Index && !f.Middle && !f.Ring && !f.Pinky:
		return Attack
	default:
		return Follow
	}
}

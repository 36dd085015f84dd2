// Package gesturetest builds synthetic hand poses for tests.
package gesturetest

import "hand-sword-fx/internal/gesture"

// Hand returns a pose with the wrist at (wx, wy, 0), the thumb resting low
// and away from the index tip, and the given fingers open.
func Hand(wx, wy float64, open gesture.Fingers) *gesture.HandPose {
	lms := make([]gesture.Landmark, gesture.NumLandmarks)
	for i := range lms {
		lms[i] = gesture.Landmark{X: wx, Y: wy}
	}
	lms[gesture.ThumbTip] = gesture.Landmark{X: wx - 0.2, Y: wy + 0.02}

	finger := func(tip, pip int, dx float64, isOpen bool) {
		lms[pip] = gesture.Landmark{X: wx + dx, Y: wy - 0.1}
		if isOpen {
			lms[tip] = gesture.Landmark{X: wx + dx, Y: wy - 0.2}
		} else {
			lms[tip] = gesture.Landmark{X: wx + dx, Y: wy - 0.05}
		}
	}
	finger(gesture.IndexTip, gesture.IndexPIP, -0.05, open.Index)
	finger(gesture.MiddleTip, gesture.MiddlePIP, 0, open.Middle)
	finger(gesture.RingTip, gesture.RingPIP, 0.05, open.Ring)
	finger(gesture.PinkyTip, gesture.PinkyPIP, 0.1, open.Pinky)
	return &gesture.HandPose{Landmarks: lms}
}

// For returns a centred pose that classifies as mode. IDLE returns nil.
func For(mode gesture.Mode) *gesture.HandPose {
	const c = 0.5
	switch mode {
	case gesture.Spread:
		return Hand(c, c, gesture.Fingers{Index: true, Middle: true, Ring: true, Pinky: true})
	case gesture.Attack:
		return Hand(c, c, gesture.Fingers{Index: true})
	case gesture.Rock:
		return Hand(c, c, gesture.Fingers{Index: true, Pinky: true})
	case gesture.Victory:
		return Hand(c, c, gesture.Fingers{Index: true, Middle: true})
	case gesture.Shield:
		return Hand(c, c, gesture.Fingers{})
	case gesture.Thumb:
		p := Hand(c, c, gesture.Fingers{})
		p.Landmarks[gesture.ThumbTip] = gesture.Landmark{X: c - 0.1, Y: c - 0.3}
		return p
	case gesture.OK:
		p := Hand(c, c, gesture.Fingers{Middle: true, Ring: true, Pinky: true})
		tip := p.Landmarks[gesture.IndexTip]
		p.Landmarks[gesture.ThumbTip] = gesture.Landmark{X: tip.X + 0.01, Y: tip.Y + 0.01}
		return p
	case gesture.Follow:
		return Hand(c, c, gesture.Fingers{Index: true, Middle: true, Ring: true})
	}
	return nil
}

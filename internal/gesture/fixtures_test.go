package gesture

// pose builds a hand with the wrist at (0.5, 0.5, 0), the thumb resting near
// the wrist and far from the index tip, and each listed finger open.
func pose(open Fingers) *HandPose {
	lms := make([]Landmark, NumLandmarks)
	for i := range lms {
		lms[i] = Landmark{X: 0.5, Y: 0.5}
	}
	lms[ThumbTip] = Landmark{X: 0.3, Y: 0.52}

	set := func(tip, pip int, x float64, isOpen bool) {
		lms[pip] = Landmark{X: x, Y: 0.4}
		if isOpen {
			lms[tip] = Landmark{X: x, Y: 0.3}
		} else {
			lms[tip] = Landmark{X: x, Y: 0.45}
		}
	}
	set(IndexTip, IndexPIP, 0.45, open.Index)
	set(MiddleTip, MiddlePIP, 0.5, open.Middle)
	set(RingTip, RingPIP, 0.55, open.Ring)
	set(PinkyTip, PinkyPIP, 0.6, open.Pinky)
	return &HandPose{Landmarks: lms}
}

func withThumb(p *HandPose, l Landmark) *HandPose {
	lms := append([]Landmark(nil), p.Landmarks...)
	lms[ThumbTip] = l
	return &HandPose{Landmarks: lms}
}

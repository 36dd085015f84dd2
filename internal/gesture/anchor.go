package gesture

import "hand-sword-fx/internal/mathutil"

// MapAnchor converts the wrist landmark into the world-space point most
// mode generators orbit. The image is mirrored on x. No hand maps to origin.
func MapAnchor(p *HandPose) mathutil.Vec3 {
	if p == nil || len(p.Landmarks) == 0 {
		return mathutil.Vec3{}
	}
	w := p.Wrist()
	return mathutil.Vec3{
		(w.X - 0.5) * -15,
		(w.Y - 0.5) * -10,
		-w.Z * 10,
	}
}

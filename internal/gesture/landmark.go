package gesture

import (
	"errors"
	"fmt"

	"hand-sword-fx/internal/mathutil"
)

// NumLandmarks is the fixed size of a hand skeleton.
const NumLandmarks = 21

// Landmark indices by convention.
const (
	Wrist     = 0
	ThumbTip  = 4
	IndexPIP  = 6
	IndexTip  = 8
	MiddlePIP = 10
	MiddleTip = 12
	RingPIP   = 14
	RingTip   = 16
	PinkyPIP  = 18
	PinkyTip  = 20
)

var (
	ErrLandmarkCount = errors.New("gesture: hand pose must have 21 landmarks")
	ErrNonFinite     = errors.New("gesture: non-finite landmark coordinate")
)

// Landmark is a normalized image-space point. x,y in [0,1] with y growing
// downward; z is relative depth, negative toward the camera.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandPose is one detected hand. A nil *HandPose means no hand this update.
// Poses are immutable once published.
type HandPose struct {
	Landmarks []Landmark `json:"landmarks"`
}

// NewHandPose copies lms into a validated pose.
func NewHandPose(lms []Landmark) (*HandPose, error) {
	p := &HandPose{Landmarks: append([]Landmark(nil), lms...)}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks landmark count and that every coordinate is finite.
func (p *HandPose) Validate() error {
	if p == nil {
		return nil
	}
	if len(p.Landmarks) != NumLandmarks {
		return fmt.Errorf("%w: got %d", ErrLandmarkCount, len(p.Landmarks))
	}
	for i, l := range p.Landmarks {
		if !mathutil.Finite(l.X, l.Y, l.Z) {
			return fmt.Errorf("%w: landmark %d", ErrNonFinite, i)
		}
	}
	return nil
}

// Wrist returns landmark 0.
func (p *HandPose) Wrist() Landmark {
	return p.Landmarks[Wrist]
}

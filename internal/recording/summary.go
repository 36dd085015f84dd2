package recording

import (
	"hand-sword-fx/internal/gesture"
)

// Summary describes what a recording would drive the swarm through.
type Summary struct {
	Samples     int                  `json:"samples"`
	Duration    float64              `json:"duration"`
	Hands       int                  `json:"hands"`
	Malformed   int                  `json:"malformed"`
	Frames      map[gesture.Mode]int `json:"frames"`
	Transitions int                  `json:"transitions"`
	Cues        int                  `json:"cues"`
}

// Summarize classifies every sample in order. Malformed hands are counted
// and otherwise skipped, leaving the mode unchanged.
func Summarize(samples []Sample) Summary {
	sum := Summary{Frames: make(map[gesture.Mode]int)}
	tr := gesture.NewTracker()
	for _, s := range samples {
		sum.Samples++
		if s.T > sum.Duration {
			sum.Duration = s.T
		}
		p := s.Pose()
		if p != nil {
			sum.Hands++
			if p.Validate() != nil {
				sum.Malformed++
				sum.Frames[tr.Current()]++
				continue
			}
		}
		prev := tr.Current()
		mode := gesture.Classify(p)
		if tr.Observe(mode) {
			sum.Cues++
		}
		if mode != prev {
			sum.Transitions++
		}
		sum.Frames[mode]++
	}
	return sum
}

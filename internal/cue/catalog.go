// Package cue describes the one-shot sounds played when a gesture mode is
// entered and dispatches them to an audio backend without ever blocking
// the frame loop.
package cue

import "hand-sword-fx/internal/gesture"

type Waveform string

const (
	Sine     Waveform = "sine"
	Square   Waveform = "square"
	Sawtooth Waveform = "sawtooth"
	Triangle Waveform = "triangle"
)

// Ramp is how a parameter reaches a point from the previous one.
type Ramp string

const (
	Set         Ramp = "set"
	Linear      Ramp = "linear"
	Exponential Ramp = "exponential"
)

// Point is an automation point; At is seconds from the voice start.
type Point struct {
	At    float64 `json:"at"`
	Value float64 `json:"value"`
	Ramp  Ramp    `json:"ramp"`
}

// Voice is one oscillator through one gain stage.
type Voice struct {
	Delay     float64  `json:"delay"`
	Waveform  Waveform `json:"waveform"`
	Frequency []Point  `json:"frequency"`
	Gain      []Point  `json:"gain"`
	Duration  float64  `json:"duration"`
}

// Cue is the sound of entering a mode.
type Cue struct {
	Mode   gesture.Mode `json:"mode"`
	Voices []Voice      `json:"voices"`
}

// Duration is when the last voice stops.
func (c Cue) Duration() float64 {
	var end float64
	for _, v := range c.Voices {
		if e := v.Delay + v.Duration; e > end {
			end = e
		}
	}
	return end
}

func sweep(w Waveform, from, to float64, ramp Ramp, dur, g0, g1 float64, gRamp Ramp) Voice {
	return Voice{
		Waveform:  w,
		Frequency: []Point{{0, from, Set}, {dur, to, ramp}},
		Gain:      []Point{{0, g0, Set}, {dur, g1, gRamp}},
		Duration:  dur,
	}
}

var catalog = map[gesture.Mode]Cue{
	// sharp metallic slash
	gesture.Attack: {Voices: []Voice{sweep(Sawtooth, 800, 100, Exponential, 0.3, 0.1, 0.01, Exponential)}},
	// low energy shield
	gesture.Shield: {Voices: []Voice{sweep(Triangle, 180, 80, Exponential, 0.6, 0.4, 0.01, Exponential)}},
	// rising wind
	gesture.Spread: {Voices: []Voice{{
		Waveform:  Triangle,
		Frequency: []Point{{0, 200, Set}, {0.4, 600, Linear}},
		Gain:      []Point{{0, 0, Set}, {0.1, 0.1, Linear}, {0.4, 0.01, Linear}},
		Duration:  0.4,
	}}},
	// electric crackle
	gesture.Rock: {Voices: []Voice{{
		Waveform:  Sawtooth,
		Frequency: []Point{{0, 100, Set}, {0.1, 50, Linear}, {0.2, 150, Linear}, {0.3, 50, Linear}},
		Gain:      []Point{{0, 0.1, Set}, {0.4, 0.01, Exponential}},
		Duration:  0.4,
	}}},
	gesture.Victory: {Voices: arpeggio(440, 110, 0.1, 3)},
	// charging
	gesture.OK: {Voices: []Voice{sweep(Square, 200, 800, Exponential, 0.5, 0.05, 0.01, Linear)}},
	gesture.Thumb: {Voices: []Voice{{
		Waveform:  Sine,
		Frequency: []Point{{0, 300, Set}, {0.15, 600, Exponential}},
		Gain:      []Point{{0, 0.2, Set}, {0.3, 0.01, Exponential}},
		Duration:  0.3,
	}}},
}

// arpeggio stacks n sine notes step Hz apart, each delayed by gap seconds.
func arpeggio(base, step, gap float64, n int) []Voice {
	out := make([]Voice, n)
	for i := range out {
		v := sweep(Sine, base+float64(i)*step, base+float64(i)*step, Set, 0.3, 0.1, 0.01, Exponential)
		v.Frequency = v.Frequency[:1]
		v.Delay = float64(i) * gap
		out[i] = v
	}
	return out
}

// Lookup returns the cue for mode. FOLLOW and IDLE have none.
func Lookup(mode gesture.Mode) (Cue, bool) {
	c, ok := catalog[mode]
	if !ok {
		return Cue{}, false
	}
	c.Mode = mode
	return c, true
}

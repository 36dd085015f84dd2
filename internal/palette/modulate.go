package palette

import (
	"math"

	"hand-sword-fx/internal/gesture"
)

// Rand is the random source used by jittering modes.
type Rand interface {
	Float64() float64
}

// Input is everything a modulator may depend on.
type Input struct {
	Base  HSL
	Time  float64
	Index int
	Count int
	Rand  Rand
}

func (in Input) frac() float64 {
	if in.Count <= 0 {
		return 0
	}
	return float64(in.Index) / float64(in.Count)
}

// Modulator turns a base color into an instance color.
type Modulator func(in Input) HSL

var modulators = map[gesture.Mode]Modulator{
	gesture.Attack: func(in Input) HSL {
		return HSL{in.Base.H + math.Sin(in.Time*2+float64(in.Index)*0.1)*0.05, 1, 0.5}
	},
	gesture.Shield: func(in Input) HSL {
		return HSL{in.Base.H, 1, 0.5 + math.Sin(in.Time+float64(in.Index)*0.2)*0.2}
	},
	gesture.Spread: func(in Input) HSL {
		return HSL{in.Base.H + in.frac()*0.1, 1, 0.6}
	},
	gesture.Rock: func(in Input) HSL {
		return HSL{in.Base.H + in.Rand.Float64()*0.1, 1, 0.6}
	},
	gesture.Victory: func(in Input) HSL {
		return HSL{in.Base.H + in.frac()*0.1, 1, 0.7}
	},
	gesture.OK: func(in Input) HSL {
		return HSL{in.Base.H, 1, 0.5 + math.Sin(in.Time*10)*0.2}
	},
	gesture.Thumb: func(in Input) HSL {
		return HSL{in.Base.H, 1, 0.5}
	},
	gesture.Idle:   drift,
	gesture.Follow: drift,
}

func drift(in Input) HSL {
	return HSL{in.Base.H + math.Sin(in.Time*0.2+float64(in.Index)*0.01)*0.15, 0.8, 0.6}
}

// Palette maps each mode to its configured base color.
type Palette struct {
	base [gesture.NumModes]HSL
}

// New builds a palette from per-mode colors. Modes missing from colors are black.
func New(colors map[gesture.Mode]RGB) *Palette {
	p := &Palette{}
	for m, c := range colors {
		if m.Valid() {
			p.base[m] = c.ToHSL()
		}
	}
	return p
}

// Base returns the configured base color of mode.
func (p *Palette) Base(mode gesture.Mode) HSL {
	if !mode.Valid() {
		return HSL{}
	}
	return p.base[mode]
}

// Color returns the color of instance index out of count at time t.
func (p *Palette) Color(mode gesture.Mode, t float64, index, count int, rnd Rand) RGB {
	mod, ok := modulators[mode]
	if !ok {
		mod = drift
	}
	return FromHSL(mod(Input{
		Base:  p.Base(mode),
		Time:  t,
		Index: index,
		Count: count,
		Rand:  rnd,
	}))
}

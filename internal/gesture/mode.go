package gesture

import (
	"fmt"
	"strings"
)

// Mode is the discrete classification of the current hand pose.
type Mode uint8

const (
	Idle Mode = iota
	Follow
	Shield
	Attack
	Spread
	Rock
	Victory
	OK
	Thumb

	NumModes = int(Thumb) + 1
)

var modeNames = [NumModes]string{
	Idle:    "IDLE",
	Follow:  "FOLLOW",
	Shield:  "SHIELD",
	Attack:  "ATTACK",
	Spread:  "SPREAD",
	Rock:    "ROCK",
	Victory: "VICTORY",
	OK:      "OK",
	Thumb:   "THUMB",
}

// Modes lists every mode in declaration order.
func Modes() []Mode {
	out := make([]Mode, NumModes)
	for i := range out {
		out[i] = Mode(i)
	}
	return out
}

func (m Mode) String() string {
	if int(m) < NumModes {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return int(m) < NumModes
}

// HasCue reports whether entering m plays an audio cue.
// FOLLOW and IDLE are silent.
func (m Mode) HasCue() bool {
	return m.Valid() && m != Idle && m != Follow
}

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (Mode, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range modeNames {
		if name == up {
			return Mode(i), nil
		}
	}
	return Idle, fmt.Errorf("gesture: unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("gesture: invalid mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

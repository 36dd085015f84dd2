package server

import (
	"encoding/json"

	"hand-sword-fx/internal/cue"
	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/swarm"
)

// Message types on /ws/frames.
const (
	TypeFrame = "frame"
	TypeCue   = "cue"
)

// SwordMsg is one instance: position, orientation as [x, y, z, w] and color.
type SwordMsg struct {
	P [3]float64 `json:"p"`
	Q [4]float64 `json:"q"`
	C string     `json:"c"`
}

// FrameMsg is a swarm frame as sent to renderer clients.
type FrameMsg struct {
	Type   string       `json:"type"`
	Seq    uint64       `json:"seq"`
	T      float64      `json:"t"`
	Mode   gesture.Mode `json:"mode"`
	Held   bool         `json:"held,omitempty"`
	Anchor [3]float64   `json:"anchor"`
	Swords []SwordMsg   `json:"swords"`
}

// CueMsg announces a mode-entered sound.
type CueMsg struct {
	Type string  `json:"type"`
	Cue  cue.Cue `json:"cue"`
}

// Envelope is used by clients to sniff the message type.
type Envelope struct {
	Type string `json:"type"`
}

func encodeFrame(f *swarm.Frame) ([]byte, error) {
	msg := FrameMsg{
		Type:   TypeFrame,
		Seq:    f.Seq,
		T:      f.Time,
		Mode:   f.Mode,
		Held:   f.Held,
		Anchor: f.Anchor,
		Swords: make([]SwordMsg, len(f.Instances)),
	}
	for i, in := range f.Instances {
		q := in.Orientation
		msg.Swords[i] = SwordMsg{
			P: in.Position,
			Q: [4]float64{q.V[0], q.V[1], q.V[2], q.W},
			C: in.Color.Hex(),
		}
	}
	return json.Marshal(msg)
}

func encodeCue(c cue.Cue) ([]byte, error) {
	return json.Marshal(CueMsg{Type: TypeCue, Cue: c})
}

// Package snapshot holds the most recently detected hand pose.
//
// Philosophy: "Drop snapshots, never queue." The detector overwrites a
// single slot; the frame loop reads whatever is current and never waits.
package snapshot

import (
	"sync/atomic"
	"time"

	"hand-sword-fx/internal/gesture"
)

// Snapshot is what the reader observes.
type Snapshot struct {
	Pose  *gesture.HandPose // nil = no hand
	Seq   uint64            // 0 = nothing published yet
	At    time.Time
	Fresh bool // first read of this Seq
}

type entry struct {
	pose *gesture.HandPose
	seq  uint64
	at   time.Time
}

// Slot is a single-writer / single-reader overwrite mailbox. Publish and
// Latest are lock-free; a reader always sees a whole entry.
type Slot struct {
	cur        atomic.Pointer[entry]
	seq        atomic.Uint64
	lastRead   atomic.Uint64
	overwrites atomic.Uint64
	now        func() time.Time
}

// New returns an empty slot. Until the first publish, Latest reports no hand.
func New() *Slot {
	return &Slot{now: time.Now}
}

// Publish replaces the current snapshot. p must not be modified afterwards.
func (s *Slot) Publish(p *gesture.HandPose) uint64 {
	seq := s.seq.Add(1)
	prev := s.cur.Swap(&entry{pose: p, seq: seq, at: s.now()})
	if prev != nil && prev.seq > s.lastRead.Load() {
		s.overwrites.Add(1)
	}
	return seq
}

// Latest returns the current snapshot without blocking.
func (s *Slot) Latest() Snapshot {
	e := s.cur.Load()
	if e == nil {
		return Snapshot{}
	}
	fresh := false
	for {
		last := s.lastRead.Load()
		if e.seq <= last {
			break
		}
		if s.lastRead.CompareAndSwap(last, e.seq) {
			fresh = true
			break
		}
	}
	return Snapshot{Pose: e.pose, Seq: e.seq, At: e.at, Fresh: fresh}
}

// Stats are slot counters.
type Stats struct {
	Published  uint64 `json:"published"`
	Overwrites uint64 `json:"overwrites"` // published but never read
	LastRead   uint64 `json:"last_read"`
}

func (s *Slot) Stats() Stats {
	return Stats{
		Published:  s.seq.Load(),
		Overwrites: s.overwrites.Load(),
		LastRead:   s.lastRead.Load(),
	}
}

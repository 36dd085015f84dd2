// Package engine runs the per-frame pipeline: latest hand snapshot →
// gesture mode → cue → swarm animation → published frame.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"hand-sword-fx/internal/config"
	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/palette"
	"hand-sword-fx/internal/snapshot"
	"hand-sword-fx/internal/swarm"
)

// Sink consumes finished frames. Consume is called on the loop goroutine
// and must return quickly; frames are shared and must not be modified.
type Sink interface {
	Consume(f *swarm.Frame)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(f *swarm.Frame)

func (fn SinkFunc) Consume(f *swarm.Frame) { fn(f) }

// CueDispatcher receives mode-entered events. Dispatch must not block.
type CueDispatcher interface {
	Dispatch(mode gesture.Mode) bool
}

// Options wires an Engine.
type Options struct {
	Config *config.Store
	Slot   *snapshot.Slot
	Cues   CueDispatcher
	Sinks  []Sink
	Rand   swarm.Rand // nil: seeded from Config.Seed, or the clock when that is 0
	Log    *zap.Logger
}

// Engine owns the tracker and animator. Step and Run must be driven from a
// single goroutine; Stats is safe from anywhere.
type Engine struct {
	cfg   *config.Store
	slot  *snapshot.Slot
	cues  CueDispatcher
	sinks []Sink
	log   *zap.Logger

	tracker  *gesture.Tracker
	animator *swarm.Animator

	pal    *palette.Palette
	palCfg *config.Config

	seq     atomic.Uint64
	skipped atomic.Uint64
	cueN    atomic.Uint64
	mode    atomic.Uint32
	count   atomic.Int64
}

// New validates options and builds an engine.
func New(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("engine: config store is required")
	}
	if opts.Slot == nil {
		return nil, fmt.Errorf("engine: snapshot slot is required")
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	rnd := opts.Rand
	if rnd == nil {
		seed := opts.Config.Get().Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return &Engine{
		cfg:      opts.Config,
		slot:     opts.Slot,
		cues:     opts.Cues,
		sinks:    opts.Sinks,
		log:      log,
		tracker:  gesture.NewTracker(),
		animator: swarm.NewAnimator(rnd),
	}, nil
}

// Step computes and publishes the frame at t seconds.
//
// A malformed snapshot skips classification and motion: the previous
// instance states are republished as a held frame. A count change still
// applies; the reallocated instances are held at the origin in the base
// color of the current mode.
func (e *Engine) Step(t float64) *swarm.Frame {
	cfg := e.cfg.Get()
	snap := e.slot.Latest()

	if err := snap.Pose.Validate(); err != nil {
		e.skipped.Add(1)
		if snap.Fresh {
			e.log.Debug("skipping malformed snapshot", zap.Uint64("snapshot", snap.Seq), zap.Error(err))
		}
		mode := e.tracker.Current()
		resized := e.animator.Resize(cfg.Count)
		inst := e.animator.Snapshot()
		if resized {
			base := palette.FromHSL(e.paletteFor(cfg).Base(mode))
			for i := range inst {
				inst[i].Color = base
			}
		}
		frame := &swarm.Frame{
			Time:      t,
			Mode:      mode,
			Held:      true,
			Instances: inst,
		}
		e.publish(frame)
		return frame
	}

	mode := gesture.Classify(snap.Pose)
	prev := e.tracker.Current()
	if e.tracker.Observe(mode) {
		if e.cues != nil && e.cues.Dispatch(mode) {
			e.cueN.Add(1)
		}
	}
	if mode != prev {
		e.log.Info("mode changed", zap.Stringer("from", prev), zap.Stringer("to", mode), zap.Float64("t", t))
		e.mode.Store(uint32(mode))
	}

	frame := e.animator.Step(swarm.Input{
		Mode:   mode,
		Anchor: gesture.MapAnchor(snap.Pose),
		Time:   t,
		Settings: swarm.Settings{
			Count:     cfg.Count,
			MoveSpeed: cfg.MoveSpeed,
			RotSpeed:  cfg.RotSpeed,
		},
		Palette: e.paletteFor(cfg),
	})
	e.publish(frame)
	return frame
}

func (e *Engine) paletteFor(cfg *config.Config) *palette.Palette {
	if cfg == e.palCfg && e.pal != nil {
		return e.pal
	}
	colors, err := cfg.Colors.ByMode()
	if err != nil {
		e.log.Warn("keeping previous palette", zap.Error(err))
		if e.pal == nil {
			e.pal = palette.New(nil)
		}
		return e.pal
	}
	e.pal = palette.New(colors)
	e.palCfg = cfg
	return e.pal
}

func (e *Engine) publish(f *swarm.Frame) {
	f.Seq = e.seq.Add(1)
	e.count.Store(int64(len(f.Instances)))
	for _, s := range e.sinks {
		e.consume(s, f)
	}
}

func (e *Engine) consume(s Sink, f *swarm.Frame) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("sink panic", zap.Any("panic", r), zap.Uint64("frame", f.Seq))
		}
	}()
	s.Consume(f)
}

// Run steps the engine at the configured frame rate until ctx is done.
// Time is seconds elapsed since Run started. A change of fps in the live
// configuration retunes the ticker.
func (e *Engine) Run(ctx context.Context) error {
	fps := e.cfg.Get().FPS
	ticker := time.NewTicker(frameInterval(fps))
	defer ticker.Stop()

	start := time.Now()
	e.log.Info("frame loop started", zap.Int("fps", fps))
	for {
		select {
		case <-ctx.Done():
			e.log.Info("frame loop stopped", zap.Uint64("frames", e.seq.Load()))
			return nil
		case now := <-ticker.C:
			e.Step(now.Sub(start).Seconds())
			if next := e.cfg.Get().FPS; next != fps {
				fps = next
				ticker.Reset(frameInterval(fps))
			}
		}
	}
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

// Stats are loop counters.
type Stats struct {
	Frames   uint64         `json:"frames"`
	Skipped  uint64         `json:"skipped"`
	Cues     uint64         `json:"cues"`
	Mode     gesture.Mode   `json:"mode"`
	Count    int            `json:"count"`
	Snapshot snapshot.Stats `json:"snapshot"`
}

func (e *Engine) Stats() Stats {
	return Stats{
		Frames:   e.seq.Load(),
		Skipped:  e.skipped.Load(),
		Cues:     e.cueN.Load(),
		Mode:     gesture.Mode(e.mode.Load()),
		Count:    int(e.count.Load()),
		Snapshot: e.slot.Stats(),
	}
}

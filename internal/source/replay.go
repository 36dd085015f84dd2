// Package source feeds hand snapshots into the engine from outside the
// frame loop.
package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/recording"
)

// Publisher receives the latest hand pose; snapshot.Slot implements it.
type Publisher interface {
	Publish(p *gesture.HandPose) uint64
}

// minPass bounds how often a looping replay restarts, so a recording whose
// samples all sit at t=0 does not spin.
const minPass = 50 * time.Millisecond

// ErrEmpty is returned by Start for a recording without samples.
var ErrEmpty = errors.New("source: empty recording")

// ReplayConfig configures a Replay.
type ReplayConfig struct {
	Loop  bool
	Speed float64 // playback rate; 0 means 1
	Log   *zap.Logger
}

// Replay publishes recorded samples at their recorded times.
type Replay struct {
	samples []recording.Sample
	pub     Publisher
	loop    bool
	speed   float64
	log     *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

func NewReplay(samples []recording.Sample, pub Publisher, cfg ReplayConfig) *Replay {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	speed := cfg.Speed
	if speed <= 0 {
		speed = 1
	}
	return &Replay{samples: samples, pub: pub, loop: cfg.Loop, speed: speed, log: log}
}

// Start begins playback in the background. It fails if already started.
func (r *Replay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return fmt.Errorf("source: replay already started")
	}
	if len(r.samples) == 0 {
		return ErrEmpty
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	r.wg.Add(1)
	go r.run(ctx)

	r.log.Info("replay started", zap.Int("samples", len(r.samples)), zap.Bool("loop", r.loop), zap.Float64("speed", r.speed))
	return nil
}

// Done is closed when playback ends, either at the end of a non-looping
// recording or after Stop. It is nil before Start.
func (r *Replay) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Stop cancels playback and waits for the goroutine to exit. Safe to call
// more than once.
func (r *Replay) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel == nil {
		return nil
	}
	r.cancel()
	r.wg.Wait()
	r.log.Info("replay stopped")
	return nil
}

func (r *Replay) run(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.done)

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for pass := 0; ; pass++ {
		start := time.Now()
		for _, s := range r.samples {
			at := time.Duration(s.T / r.speed * float64(time.Second))
			if wait := at - time.Since(start); wait > 0 {
				timer.Reset(wait)
				select {
				case <-ctx.Done():
					return
				case <-timer.C:
				}
			} else if ctx.Err() != nil {
				return
			}
			r.pub.Publish(s.Pose())
		}
		if !r.loop {
			r.log.Debug("replay finished", zap.Int("passes", pass+1))
			return
		}
		if rest := minPass - time.Since(start); rest > 0 {
			timer.Reset(rest)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		}
	}
}

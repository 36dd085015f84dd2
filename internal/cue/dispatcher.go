package cue

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"hand-sword-fx/internal/gesture"
)

const (
	defaultQueue   = 8
	defaultTimeout = 2 * time.Second
)

// Dispatcher queues cue requests from the frame loop and plays them on a
// separate goroutine. Playback failures are logged and dropped.
type Dispatcher struct {
	player  Player
	log     *zap.Logger
	queue   chan Cue
	timeout time.Duration

	played  atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// NewDispatcher creates a dispatcher; call Run to start playback.
func NewDispatcher(p Player, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		player:  p,
		log:     log,
		queue:   make(chan Cue, defaultQueue),
		timeout: defaultTimeout,
	}
}

// Dispatch requests the cue of mode. It never blocks: silent modes and a
// full queue return false.
func (d *Dispatcher) Dispatch(mode gesture.Mode) bool {
	c, ok := Lookup(mode)
	if !ok {
		return false
	}
	select {
	case d.queue <- c:
		return true
	default:
		d.dropped.Add(1)
		d.log.Warn("cue queue full, dropping", zap.Stringer("mode", mode))
		return false
	}
}

// Run plays queued cues until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-d.queue:
			d.play(ctx, c)
		}
	}
}

func (d *Dispatcher) play(ctx context.Context, c Cue) {
	pctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := safePlay(pctx, d.player, c); err != nil {
		d.failed.Add(1)
		d.log.Warn("cue playback failed", zap.Stringer("mode", c.Mode), zap.Error(err))
		return
	}
	d.played.Add(1)
}

// Stats are dispatcher counters.
type Stats struct {
	Played  uint64 `json:"played"`
	Failed  uint64 `json:"failed"`
	Dropped uint64 `json:"dropped"`
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Played:  d.played.Load(),
		Failed:  d.failed.Load(),
		Dropped: d.dropped.Load(),
	}
}

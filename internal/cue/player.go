package cue

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Player hands a cue to an audio backend.
type Player interface {
	Play(ctx context.Context, c Cue) error
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(ctx context.Context, c Cue) error

func (f PlayerFunc) Play(ctx context.Context, c Cue) error { return f(ctx, c) }

// LogPlayer only logs cues. Useful headless.
type LogPlayer struct {
	Log *zap.Logger
}

func (p LogPlayer) Play(_ context.Context, c Cue) error {
	if p.Log != nil {
		p.Log.Info("cue",
			zap.Stringer("mode", c.Mode),
			zap.Int("voices", len(c.Voices)),
			zap.Float64("duration", c.Duration()))
	}
	return nil
}

// Multi plays on every player, continuing past failures.
type Multi []Player

func (m Multi) Play(ctx context.Context, c Cue) error {
	var errs []error
	for i, p := range m {
		if err := safePlay(ctx, p, c); err != nil {
			errs = append(errs, fmt.Errorf("player %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// safePlay turns a panicking backend into an error.
func safePlay(ctx context.Context, p Player, c Cue) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cue: player panic: %v", r)
		}
	}()
	return p.Play(ctx, c)
}

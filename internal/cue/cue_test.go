package cue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hand-sword-fx/internal/gesture"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCatalogCoversSoundModes(t *testing.T) {
	for _, m := range gesture.Modes() {
		c, ok := Lookup(m)
		assert.Equal(t, m.HasCue(), ok, m.String())
		if !ok {
			continue
		}
		assert.Equal(t, m, c.Mode)
		require.NotEmpty(t, c.Voices)
		for _, v := range c.Voices {
			assert.NotEmpty(t, v.Frequency)
			assert.NotEmpty(t, v.Gain)
			assert.Greater(t, v.Duration, 0.0)
		}
	}
}

func TestVictoryArpeggio(t *testing.T) {
	c, ok := Lookup(gesture.Victory)
	require.True(t, ok)
	require.Len(t, c.Voices, 3)
	for i, v := range c.Voices {
		assert.InDelta(t, 440+110*float64(i), v.Frequency[0].Value, 1e-9)
		assert.InDelta(t, 0.1*float64(i), v.Delay, 1e-9)
	}
	assert.InDelta(t, 0.5, c.Duration(), 1e-9)
}

type recorder struct {
	mu    sync.Mutex
	modes []gesture.Mode
}

func (r *recorder) Play(_ context.Context, c Cue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes = append(r.modes, c.Mode)
	return nil
}

func (r *recorder) got() []gesture.Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]gesture.Mode(nil), r.modes...)
}

func runDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestDispatchPlaysInOrder(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, nil)
	runDispatcher(t, d)

	assert.False(t, d.Dispatch(gesture.Follow))
	assert.False(t, d.Dispatch(gesture.Idle))
	assert.True(t, d.Dispatch(gesture.Attack))
	assert.True(t, d.Dispatch(gesture.Shield))

	assert.Eventually(t, func() bool { return len(rec.got()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []gesture.Mode{gesture.Attack, gesture.Shield}, rec.got())
}

func TestFailuresAreContained(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	d := NewDispatcher(PlayerFunc(func(_ context.Context, c Cue) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		switch c.Mode {
		case gesture.Rock:
			panic("backend exploded")
		case gesture.OK:
			return errors.New("device busy")
		}
		return nil
	}), nil)
	runDispatcher(t, d)

	d.Dispatch(gesture.Rock)
	d.Dispatch(gesture.OK)
	d.Dispatch(gesture.Thumb)

	assert.Eventually(t, func() bool {
		st := d.Stats()
		return st.Played == 1 && st.Failed == 2
	}, time.Second, 5*time.Millisecond)
}

func TestDispatchNeverBlocks(t *testing.T) {
	block := make(chan struct{})
	d := NewDispatcher(PlayerFunc(func(ctx context.Context, _ Cue) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	}), nil)
	runDispatcher(t, d)
	defer close(block)

	start := time.Now()
	for i := 0; i < 100; i++ {
		d.Dispatch(gesture.Attack)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Greater(t, d.Stats().Dropped, uint64(0))
}

func TestMultiContinuesPastFailure(t *testing.T) {
	rec := &recorder{}
	m := Multi{
		PlayerFunc(func(context.Context, Cue) error { panic("boom") }),
		rec,
	}
	c, _ := Lookup(gesture.Thumb)
	err := m.Play(context.Background(), c)
	assert.Error(t, err)
	assert.Equal(t, []gesture.Mode{gesture.Thumb}, rec.got())
}

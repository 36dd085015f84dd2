package source

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/gesture/gesturetest"
	"hand-sword-fx/internal/recording"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sink struct {
	mu    sync.Mutex
	modes []gesture.Mode
}

func (s *sink) Publish(p *gesture.HandPose) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes = append(s.modes, gesture.Classify(p))
	return uint64(len(s.modes))
}

func (s *sink) got() []gesture.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gesture.Mode(nil), s.modes...)
}

func samples() []recording.Sample {
	return []recording.Sample{
		recording.FromPose(0, gesturetest.For(gesture.Attack)),
		recording.FromPose(0.005, gesturetest.For(gesture.Shield)),
		recording.FromPose(0.010, nil),
	}
}

func TestReplayPublishesInOrder(t *testing.T) {
	out := &sink{}
	r := NewReplay(samples(), out, ReplayConfig{})
	require.NoError(t, r.Start(context.Background()))

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not finish")
	}
	require.NoError(t, r.Stop())
	assert.Equal(t, []gesture.Mode{gesture.Attack, gesture.Shield, gesture.Idle}, out.got())
}

func TestReplayLoopsUntilStopped(t *testing.T) {
	out := &sink{}
	r := NewReplay(samples(), out, ReplayConfig{Loop: true, Speed: 4})
	require.NoError(t, r.Start(context.Background()))

	assert.Eventually(t, func() bool { return len(out.got()) >= 7 }, 2*time.Second, time.Millisecond)
	require.NoError(t, r.Stop())
	require.NoError(t, r.Stop())

	got := out.got()
	for i, m := range got {
		assert.Equal(t, []gesture.Mode{gesture.Attack, gesture.Shield, gesture.Idle}[i%3], m)
	}
}

func TestReplayLoopOfInstantRecordingIsPaced(t *testing.T) {
	out := &sink{}
	single := []recording.Sample{recording.FromPose(0, gesturetest.For(gesture.Victory))}
	r := NewReplay(single, out, ReplayConfig{Loop: true})
	require.NoError(t, r.Start(context.Background()))

	time.Sleep(4 * minPass)
	require.NoError(t, r.Stop())

	n := len(out.got())
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, 8)
}

func TestReplayStopsWithContext(t *testing.T) {
	out := &sink{}
	long := []recording.Sample{recording.FromPose(0, nil), recording.FromPose(60, nil)}
	r := NewReplay(long, out, ReplayConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	cancel()

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("replay ignored cancellation")
	}
	require.NoError(t, r.Stop())
}

func TestReplayStartTwice(t *testing.T) {
	r := NewReplay(samples(), &sink{}, ReplayConfig{Loop: true})
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()
	assert.Error(t, r.Start(context.Background()))
}

func TestReplayEmpty(t *testing.T) {
	r := NewReplay(nil, &sink{}, ReplayConfig{})
	assert.ErrorIs(t, r.Start(context.Background()), ErrEmpty)
	assert.Nil(t, r.Done())
	assert.NoError(t, r.Stop())
}

package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerCuesOncePerTransition(t *testing.T) {
	attack := pose(Fingers{Index: true})
	shield := pose(Fingers{})

	tr := NewTracker()
	var cues []Mode
	for _, p := range []*HandPose{attack, attack, shield} {
		m := Classify(p)
		if tr.Observe(m) {
			cues = append(cues, m)
		}
	}
	require.Len(t, cues, 2)
	assert.Equal(t, []Mode{Attack, Shield}, cues)
}

func TestTrackerSilentModes(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.Observe(Idle), "starting mode is IDLE")
	assert.False(t, tr.Observe(Follow))
	assert.Equal(t, Follow, tr.Current())
	assert.True(t, tr.Observe(Rock))
	assert.False(t, tr.Observe(Rock))
	assert.False(t, tr.Observe(Idle))
	assert.True(t, tr.Observe(Rock))
}

func TestModeText(t *testing.T) {
	for _, m := range Modes() {
		b, err := m.MarshalText()
		require.NoError(t, err)
		var back Mode
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, m, back)
	}
	_, err := ParseMode("wave")
	assert.Error(t, err)
	m, err := ParseMode(" victory ")
	require.NoError(t, err)
	assert.Equal(t, Victory, m)
}

package recording

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/gesture/gesturetest"
)

func TestWriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(FromPose(0, gesturetest.For(gesture.Attack))))
	require.NoError(t, w.Write(FromPose(0.5, nil)))
	require.NoError(t, w.Flush())
	assert.Equal(t, 2, w.Count())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"t":0.5,"hand":null}`, lines[1])

	got, err := ReadAll(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, gesture.Attack, gesture.Classify(got[0].Pose()))
	assert.Nil(t, got[1].Pose())
	assert.Equal(t, 0.5, got[1].T)
}

func TestFromPoseCopies(t *testing.T) {
	p := gesturetest.For(gesture.Shield)
	s := FromPose(1, p)
	p.Landmarks[0].X = 99
	assert.NotEqual(t, 99.0, s.Hand[0].X)
}

func TestBadLines(t *testing.T) {
	in := strings.Join([]string{
		`{"t":0,"hand":null}`,
		``,
		`not json`,
		`{"t":1,"hand":[{"x":0,"y":0,"z":0}]}`,
		`{"t":2,"hand":null}`,
	}, "\n")
	r := NewReader(strings.NewReader(in))

	s, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.T)

	_, err = r.Next()
	assert.True(t, errors.Is(err, ErrBadLine))
	assert.Equal(t, 3, r.Line())

	_, err = r.Next()
	assert.ErrorIs(t, err, ErrBadLine, "wrong landmark count")

	s, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.T)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestSummarize(t *testing.T) {
	bad := gesturetest.For(gesture.Spread)
	bad.Landmarks[3].Z = math.NaN()
	samples := []Sample{
		FromPose(0, nil),
		FromPose(0.1, gesturetest.For(gesture.Attack)),
		FromPose(0.2, gesturetest.For(gesture.Attack)),
		FromPose(0.3, bad),
		FromPose(0.4, gesturetest.For(gesture.Shield)),
		FromPose(0.5, gesturetest.For(gesture.Follow)),
		FromPose(0.6, nil),
	}
	sum := Summarize(samples)
	assert.Equal(t, 7, sum.Samples)
	assert.Equal(t, 0.6, sum.Duration)
	assert.Equal(t, 5, sum.Hands)
	assert.Equal(t, 1, sum.Malformed)
	assert.Equal(t, 2, sum.Cues)
	assert.Equal(t, 4, sum.Transitions) // idle→attack→shield→follow→idle
	assert.Equal(t, 3, sum.Frames[gesture.Attack])
	assert.Equal(t, 2, sum.Frames[gesture.Idle])
}

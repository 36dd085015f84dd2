package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/gesture/gesturetest"
	"hand-sword-fx/internal/recording"
)

func writeJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "pose.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestReadPoseBareArray(t *testing.T) {
	p := gesturetest.For(gesture.Rock)
	got, err := readPose(writeJSON(t, p.Landmarks))
	require.NoError(t, err)
	assert.Equal(t, gesture.Rock, gesture.Classify(got))
}

func TestReadPoseSample(t *testing.T) {
	got, err := readPose(writeJSON(t, recording.FromPose(1, gesturetest.For(gesture.OK))))
	require.NoError(t, err)
	assert.Equal(t, gesture.OK, gesture.Classify(got))

	got, err = readPose(writeJSON(t, recording.FromPose(1, nil)))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadPoseErrors(t *testing.T) {
	_, err := readPose(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = readPose(path)
	assert.Error(t, err)
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hand-sword-fx/internal/config"
	"hand-sword-fx/internal/cue"
	"hand-sword-fx/internal/engine"
	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/gesture/gesturetest"
	"hand-sword-fx/internal/mathutil"
	"hand-sword-fx/internal/palette"
	"hand-sword-fx/internal/recording"
	"hand-sword-fx/internal/snapshot"
	"hand-sword-fx/internal/swarm"
)

type fixedStats engine.Stats

func (f fixedStats) Stats() engine.Stats { return engine.Stats(f) }

type fixture struct {
	srv   *Server
	ts    *httptest.Server
	store *config.Store
	slot  *snapshot.Slot
	rec   *bytes.Buffer
	w     *recording.Writer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: config.NewStore(config.Default()),
		slot:  snapshot.New(),
		rec:   &bytes.Buffer{},
	}
	f.w = recording.NewWriter(f.rec)
	f.srv = New(Options{
		Config:   f.store,
		Slot:     f.slot,
		Stats:    fixedStats{Frames: 42, Mode: gesture.Shield},
		Recorder: f.w,
	})
	f.ts = httptest.NewServer(f.srv.Handler())
	t.Cleanup(func() {
		f.srv.Hub().Close()
		f.ts.Close()
	})
	return f
}

func (f *fixture) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(f.ts.URL, "http") + path
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.ts.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.Engine)
	assert.Equal(t, uint64(42), got.Engine.Frames)
	assert.Equal(t, gesture.Shield, got.Engine.Mode)
}

func put(t *testing.T, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestConfigRoundTrip(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/api/config")
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	resp.Body.Close()
	assert.Equal(t, 10, cfg.Count)

	r := put(t, f.ts.URL+"/api/config", `{"count": 20, "colors": {"attack": "#00ff00"}}`)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.Equal(t, 20, f.store.Get().Count)
	assert.Equal(t, "#00ff00", f.store.Get().Colors.Attack)
	assert.Equal(t, "#ffaa00", f.store.Get().Colors.Shield, "unnamed fields keep their values")
}

func TestConfigRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	before := f.store.Version()

	for _, body := range []string{
		`{"count": 500}`,
		`{"move_speed": -1}`,
		`{"colors": {"ok": "yellow"}}`,
		`{"count": `,
		`{"bogus": 1}`,
	} {
		r := put(t, f.ts.URL+"/api/config", body)
		assert.Equal(t, http.StatusBadRequest, r.StatusCode, body)
	}
	assert.Equal(t, before, f.store.Version())
	assert.Equal(t, 10, f.store.Get().Count)
}

func TestLandmarksFeedSlot(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, f.wsURL("/ws/landmarks"), nil)
	require.NoError(t, err)

	data, err := json.Marshal(recording.FromPose(0.1, gesturetest.For(gesture.Victory)))
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("garbage")))
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))

	assert.Eventually(t, func() bool {
		return gesture.Classify(f.slot.Latest().Pose) == gesture.Victory
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, f.w.Count())
	assert.Equal(t, uint64(1), f.srv.rejected.Load())

	conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool {
		return f.slot.Latest().Pose == nil
	}, 2*time.Second, 5*time.Millisecond, "hand cleared when the detector leaves")
}

func readMsg(t *testing.T, ctx context.Context, conn *websocket.Conn, v any) string {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	require.NoError(t, json.Unmarshal(data, v))
	return env.Type
}

func TestFramesAndCuesReachRenderer(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, f.wsURL("/ws/frames"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	hub := f.srv.Hub()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	q := mathutil.EulerToQuat(0.3, 0.2, 0.1)
	hub.Consume(&swarm.Frame{
		Seq:    7,
		Mode:   gesture.Attack,
		Anchor: mathutil.Vec3{1, 2, 3},
		Instances: []swarm.Instance{{
			Pose:  swarm.Pose{Position: mathutil.Vec3{4, 5, 6}, Orientation: q},
			Color: palette.RGB{R: 1},
		}},
	})
	var fm FrameMsg
	assert.Equal(t, TypeFrame, readMsg(t, ctx, conn, &fm))
	assert.Equal(t, uint64(7), fm.Seq)
	assert.Equal(t, gesture.Attack, fm.Mode)
	require.Len(t, fm.Swords, 1)
	assert.Equal(t, [3]float64{4, 5, 6}, fm.Swords[0].P)
	assert.InDelta(t, q.W, fm.Swords[0].Q[3], 1e-12)
	assert.Equal(t, "#ff0000", fm.Swords[0].C)

	c, _ := cue.Lookup(gesture.Attack)
	require.NoError(t, hub.Play(ctx, c))
	var cm CueMsg
	assert.Equal(t, TypeCue, readMsg(t, ctx, conn, &cm))
	assert.Equal(t, gesture.Attack, cm.Cue.Mode)
}

func TestSlowRendererSeesLatestFrame(t *testing.T) {
	h := NewHub(nil)
	c := &client{wake: make(chan struct{}, 1), cues: make(chan []byte, 1)}
	h.register(c)

	for seq := uint64(1); seq <= 3; seq++ {
		h.Consume(&swarm.Frame{Seq: seq})
	}
	var fm FrameMsg
	require.NoError(t, json.Unmarshal(*c.frame.Load(), &fm))
	assert.Equal(t, uint64(3), fm.Seq)
	assert.Equal(t, uint64(2), h.dropped.Load())
	assert.Len(t, c.wake, 1)
}

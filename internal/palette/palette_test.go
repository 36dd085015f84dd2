package palette

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hand-sword-fx/internal/gesture"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ffaa00")
	require.NoError(t, err)
	assert.InDelta(t, 1, c.R, 1e-12)
	assert.InDelta(t, 170.0/255, c.G, 1e-12)
	assert.InDelta(t, 0, c.B, 1e-12)
	assert.Equal(t, "#ffaa00", c.Hex())

	short, err := ParseHex("#0f0")
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", short.Hex())

	for _, bad := range []string{"", "#12345", "#gggggg", "red"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestHSLRoundTrip(t *testing.T) {
	for _, hex := range []string{"#ff0000", "#ffaa00", "#00ffaa", "#ff00ff", "#00ffff", "#ffff00", "#0088ff", "#8800ff", "#336699", "#808080"} {
		c, err := ParseHex(hex)
		require.NoError(t, err)
		assert.Equal(t, hex, FromHSL(c.ToHSL()).Hex(), hex)
	}
}

func TestKnownHues(t *testing.T) {
	red, _ := ParseHex("#ff0000")
	assert.InDelta(t, 0, red.ToHSL().H, 1e-12)
	cyan, _ := ParseHex("#00ffff")
	assert.InDelta(t, 0.5, cyan.ToHSL().H, 1e-12)
	violet, _ := ParseHex("#8800ff")
	h := violet.ToHSL()
	assert.InDelta(t, 0.7555, h.H, 1e-3)
	assert.InDelta(t, 1, h.S, 1e-12)
	assert.InDelta(t, 0.5, h.L, 1e-12)
}

func testPalette(t *testing.T) *Palette {
	t.Helper()
	colors := map[gesture.Mode]RGB{}
	for m, hex := range map[gesture.Mode]string{
		gesture.Attack: "#ff0000", gesture.Shield: "#ffaa00", gesture.Spread: "#00ffaa",
		gesture.Rock: "#ff00ff", gesture.Victory: "#00ffff", gesture.OK: "#ffff00",
		gesture.Thumb: "#0088ff", gesture.Idle: "#8800ff", gesture.Follow: "#8800ff",
	} {
		c, err := ParseHex(hex)
		require.NoError(t, err)
		colors[m] = c
	}
	return New(colors)
}

func TestModeModulation(t *testing.T) {
	p := testPalette(t)
	rnd := rand.New(rand.NewPCG(1, 2))

	// THUMB ignores time and index
	a := p.Color(gesture.Thumb, 0, 0, 10, rnd)
	b := p.Color(gesture.Thumb, 7.3, 9, 10, rnd)
	assert.Equal(t, a, b)
	assert.InDelta(t, 0.5, a.ToHSL().L, 1e-9)

	// SHIELD lightness follows 0.5 + sin(t + 0.2i)·0.2
	tm, i := 1.3, 4
	want := 0.5 + math.Sin(tm+0.2*float64(i))*0.2
	assert.InDelta(t, want, p.Color(gesture.Shield, tm, i, 10, rnd).ToHSL().L, 1e-9)

	// SPREAD hue fans out by index
	h0 := p.Color(gesture.Spread, 0, 0, 10, rnd).ToHSL().H
	h5 := p.Color(gesture.Spread, 0, 5, 10, rnd).ToHSL().H
	assert.InDelta(t, 0.05, h5-h0, 1e-3)

	// VICTORY is brighter than SPREAD
	assert.InDelta(t, 0.7, p.Color(gesture.Victory, 0, 3, 10, rnd).ToHSL().L, 1e-9)

	// IDLE drift uses saturation 0.8
	idle := p.Color(gesture.Idle, 2, 1, 10, rnd).ToHSL()
	assert.InDelta(t, 0.8, idle.S, 1e-9)
	assert.InDelta(t, 0.6, idle.L, 1e-9)
}

func TestRockJitterBounded(t *testing.T) {
	p := testPalette(t)
	rnd := rand.New(rand.NewPCG(7, 7))
	base := p.Base(gesture.Rock).H
	for i := 0; i < 200; i++ {
		h := p.Color(gesture.Rock, 0, i, 200, rnd).ToHSL().H
		d := h - base
		if d < -0.5 {
			d++
		}
		assert.GreaterOrEqual(t, d, -1e-9)
		assert.LessOrEqual(t, d, 0.1+1e-9)
	}
}

func TestFromHSLWrapsHue(t *testing.T) {
	assert.Equal(t, FromHSL(HSL{0.1, 1, 0.5}).Hex(), FromHSL(HSL{1.1, 1, 0.5}).Hex())
	assert.Equal(t, FromHSL(HSL{0.9, 1, 0.5}).Hex(), FromHSL(HSL{-0.1, 1, 0.5}).Hex())
}

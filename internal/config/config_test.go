package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hand-sword-fx/internal/gesture"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Count)
	assert.Equal(t, 0.04, cfg.MoveSpeed)
	assert.Equal(t, 0.1, cfg.RotSpeed)
	assert.Equal(t, 60, cfg.FPS)
	assert.Equal(t, "#8800ff", cfg.Colors.Idle)
	assert.Equal(t, "webp", cfg.Preview.Format)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "fx.yaml", `
count: 40
move_speed: 0.08
colors:
  attack: "#123456"
preview:
  format: tga
  every: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Count)
	assert.Equal(t, 0.08, cfg.MoveSpeed)
	assert.Equal(t, "#123456", cfg.Colors.Attack)
	assert.Equal(t, "tga", cfg.Preview.Format)
	assert.Equal(t, 5, cfg.Preview.Every)
	assert.Equal(t, 0.1, cfg.RotSpeed, "unset fields keep defaults")
}

func TestLoadHuJSON(t *testing.T) {
	path := writeFile(t, "fx.jsonc", `{
  // slider values
  "count": 25,
  "rot_speed": 0.3,
  "server": {"addr": ":9090"}, // trailing comma is fine
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Count)
	assert.Equal(t, 0.3, cfg.RotSpeed)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.json", `{"count": `))
	assert.Error(t, err)
}

func TestPrecedence(t *testing.T) {
	path := writeFile(t, "fx.yaml", "count: 40\nmove_speed: 0.08\nrot_speed: 0.2\n")
	t.Setenv("SWORDFX_COUNT", "50")
	t.Setenv("SWORDFX_ROT_SPEED", "0.3")
	t.Setenv("SWORDFX_COLOR_OK", "#010203")

	cfg, err := Build(path, Flags{Count: 60})
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Count, "flag beats env")
	assert.Equal(t, 0.3, cfg.RotSpeed, "env beats file")
	assert.Equal(t, 0.08, cfg.MoveSpeed, "file beats default")
	assert.Equal(t, "#010203", cfg.Colors.OK)
}

func TestBuildRejectsOutOfRangeLayers(t *testing.T) {
	t.Run("file zero count", func(t *testing.T) {
		path := writeFile(t, "fx.yaml", "count: 0\n")
		_, err := Build(path, Flags{})
		assert.ErrorIs(t, err, ErrInvalid)
	})
	t.Run("file negative speed", func(t *testing.T) {
		path := writeFile(t, "fx.json", `{"move_speed": -1}`)
		_, err := Build(path, Flags{})
		assert.ErrorIs(t, err, ErrInvalid)
	})
	t.Run("env negative count", func(t *testing.T) {
		t.Setenv("SWORDFX_COUNT", "-5")
		_, err := Build("", Flags{})
		assert.ErrorIs(t, err, ErrInvalid)
	})
	t.Run("file zero workers", func(t *testing.T) {
		path := writeFile(t, "fx.yaml", "preview:\n  workers: 0\n")
		_, err := Build(path, Flags{})
		assert.ErrorIs(t, err, ErrInvalid)
	})
	t.Run("absent fields default", func(t *testing.T) {
		path := writeFile(t, "fx.yaml", "count: 12\n")
		cfg, err := Build(path, Flags{})
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.Count)
		assert.Equal(t, 0.04, cfg.MoveSpeed)
	})
}

func TestValidateRanges(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"count too high", func(c *Config) { c.Count = MaxCount + 1 }},
		{"count zero", func(c *Config) { c.Count = 0 }},
		{"move speed above one", func(c *Config) { c.MoveSpeed = 1.5 }},
		{"rot speed zero", func(c *Config) { c.RotSpeed = 0 }},
		{"bad color", func(c *Config) { c.Colors.Rock = "purple" }},
		{"bad format", func(c *Config) { c.Preview.Format = "gif" }},
		{"fps", func(c *Config) { c.FPS = 1000 }},
		{"zero supersample", func(c *Config) { c.Preview.Supersample = 0 }},
		{"zero width", func(c *Config) { c.Preview.Width = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mut(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestColorsByMode(t *testing.T) {
	cfg := Default()
	m, err := cfg.Colors.ByMode()
	require.NoError(t, err)
	assert.Len(t, m, gesture.NumModes)
	assert.Equal(t, m[gesture.Idle], m[gesture.Follow])
	assert.Equal(t, "#0088ff", m[gesture.Thumb].Hex())
}

func TestStore(t *testing.T) {
	s := NewStore(Default())
	before := s.Get()

	require.NoError(t, s.Update(func(c *Config) { c.Count = 20 }))
	assert.Equal(t, 20, s.Get().Count)
	assert.Equal(t, 10, before.Count, "earlier snapshots are not mutated")
	assert.Equal(t, uint64(1), s.Version())

	err := s.Update(func(c *Config) { c.MoveSpeed = -1 })
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, 0.04, s.Get().MoveSpeed)
	assert.Equal(t, uint64(1), s.Version())
}

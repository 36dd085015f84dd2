package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/palette"
)

// Declared ranges of the live tunables.
const (
	MinCount = 1
	MaxCount = 200
	MaxFPS   = 240
)

// EnvPrefix namespaces environment overrides (SWORDFX_COUNT, SWORDFX_PREVIEW_DIR, ...).
const EnvPrefix = "SWORDFX_"

var ErrInvalid = errors.New("config: invalid")

// Config holds the swarm tunables plus the settings of the surrounding tools.
type Config struct {
	// Swarm
	Count     int     `yaml:"count" json:"count" env:"COUNT"`
	MoveSpeed float64 `yaml:"move_speed" json:"move_speed" env:"MOVE_SPEED"`
	RotSpeed  float64 `yaml:"rot_speed" json:"rot_speed" env:"ROT_SPEED"`
	Colors    Colors  `yaml:"colors" json:"colors" envPrefix:"COLOR_"`

	// Loop
	FPS  int    `yaml:"fps" json:"fps" env:"FPS"`
	Seed uint64 `yaml:"seed" json:"seed" env:"SEED"`

	Server  ServerConfig  `yaml:"server" json:"server" envPrefix:"SERVER_"`
	Preview PreviewConfig `yaml:"preview" json:"preview" envPrefix:"PREVIEW_"`
}

// Colors are the per-mode base colors as #rrggbb. FOLLOW shares Idle.
type Colors struct {
	Attack  string `yaml:"attack" json:"attack" env:"ATTACK"`
	Shield  string `yaml:"shield" json:"shield" env:"SHIELD"`
	Spread  string `yaml:"spread" json:"spread" env:"SPREAD"`
	Rock    string `yaml:"rock" json:"rock" env:"ROCK"`
	Victory string `yaml:"victory" json:"victory" env:"VICTORY"`
	OK      string `yaml:"ok" json:"ok" env:"OK"`
	Thumb   string `yaml:"thumb" json:"thumb" env:"THUMB"`
	Idle    string `yaml:"idle" json:"idle" env:"IDLE"`
}

type ServerConfig struct {
	Addr   string `yaml:"addr" json:"addr" env:"ADDR"`
	Record string `yaml:"record" json:"record" env:"RECORD"` // JSONL path for incoming landmarks
}

type PreviewConfig struct {
	Dir         string `yaml:"dir" json:"dir" env:"DIR"`
	Format      string `yaml:"format" json:"format" env:"FORMAT"` // webp | tga
	Width       int    `yaml:"width" json:"width" env:"WIDTH"`
	Height      int    `yaml:"height" json:"height" env:"HEIGHT"`
	Supersample int    `yaml:"supersample" json:"supersample" env:"SUPERSAMPLE"`
	Every       int    `yaml:"every" json:"every" env:"EVERY"` // export every Nth frame; 0 disables live export
	Workers     int    `yaml:"workers" json:"workers" env:"WORKERS"`
	Backdrop    string `yaml:"backdrop" json:"backdrop" env:"BACKDROP"`
	HUD         bool   `yaml:"hud" json:"hud" env:"HUD"`
}

// Default returns the stock configuration.
func Default() Config {
	var c Config
	c.Resolve(Flags{})
	return c
}

// Load reads a YAML or JSON/HuJSON config file over the defaults.
// Fields absent from the file keep their default; fields present are kept
// as written, even when zero, so Validate can reject them.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		std, err := hujson.Standardize(data)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if err := json.Unmarshal(std, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	return cfg, nil
}

// ApplyEnv overlays SWORDFX_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}

// Resolve applies flags and then fills in any empty fields with defaults.
func (c *Config) Resolve(flags Flags) {
	c.applyFlags(flags)
	c.fillDefaults()
}

// applyFlags overrides fields whose flag is non-zero/non-empty.
func (c *Config) applyFlags(flags Flags) {
	if flags.Count > 0 {
		c.Count = flags.Count
	}
	if flags.MoveSpeed > 0 {
		c.MoveSpeed = flags.MoveSpeed
	}
	if flags.RotSpeed > 0 {
		c.RotSpeed = flags.RotSpeed
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	if flags.Addr != "" {
		c.Server.Addr = flags.Addr
	}
	if flags.PreviewDir != "" {
		c.Preview.Dir = flags.PreviewDir
	}
	if flags.Workers > 0 {
		c.Preview.Workers = flags.Workers
	}
}

func (c *Config) fillDefaults() {
	// Swarm defaults
	if c.Count <= 0 {
		c.Count = 10
	}
	if c.MoveSpeed <= 0 {
		c.MoveSpeed = 0.04
	}
	if c.RotSpeed <= 0 {
		c.RotSpeed = 0.1
	}
	c.Colors.resolve()

	if c.FPS <= 0 {
		c.FPS = 60
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}

	// Defaults for preview settings
	if c.Preview.Dir == "" {
		c.Preview.Dir = "previews"
	}
	if c.Preview.Format == "" {
		c.Preview.Format = "webp"
	}
	if c.Preview.Width <= 0 {
		c.Preview.Width = 640
	}
	if c.Preview.Height <= 0 {
		c.Preview.Height = 360
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = 2
	}
	if c.Preview.Workers <= 0 {
		c.Preview.Workers = runtime.NumCPU()
	}
}

func (c *Colors) resolve() {
	def := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}
	def(&c.Attack, "#ff0000")
	def(&c.Shield, "#ffaa00")
	def(&c.Spread, "#00ffaa")
	def(&c.Rock, "#ff00ff")
	def(&c.Victory, "#00ffff")
	def(&c.OK, "#ffff00")
	def(&c.Thumb, "#0088ff")
	def(&c.Idle, "#8800ff")
}

// ByMode parses the colors into a palette table.
func (c Colors) ByMode() (map[gesture.Mode]palette.RGB, error) {
	src := map[gesture.Mode]string{
		gesture.Attack:  c.Attack,
		gesture.Shield:  c.Shield,
		gesture.Spread:  c.Spread,
		gesture.Rock:    c.Rock,
		gesture.Victory: c.Victory,
		gesture.OK:      c.OK,
		gesture.Thumb:   c.Thumb,
		gesture.Idle:    c.Idle,
		gesture.Follow:  c.Idle,
	}
	out := make(map[gesture.Mode]palette.RGB, len(src))
	for m, hex := range src {
		rgb, err := palette.ParseHex(hex)
		if err != nil {
			return nil, fmt.Errorf("config: color %s: %w", strings.ToLower(m.String()), err)
		}
		out[m] = rgb
	}
	return out, nil
}

// Validate checks the declared ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Count < MinCount || c.Count > MaxCount {
		errs = append(errs, fmt.Errorf("count %d outside [%d, %d]", c.Count, MinCount, MaxCount))
	}
	if !(c.MoveSpeed > 0 && c.MoveSpeed <= 1) {
		errs = append(errs, fmt.Errorf("move_speed %v outside (0, 1]", c.MoveSpeed))
	}
	if !(c.RotSpeed > 0 && c.RotSpeed <= 1) {
		errs = append(errs, fmt.Errorf("rot_speed %v outside (0, 1]", c.RotSpeed))
	}
	if c.FPS < 1 || c.FPS > MaxFPS {
		errs = append(errs, fmt.Errorf("fps %d outside [1, %d]", c.FPS, MaxFPS))
	}
	if _, err := c.Colors.ByMode(); err != nil {
		errs = append(errs, err)
	}
	switch c.Preview.Format {
	case "webp", "tga":
	default:
		errs = append(errs, fmt.Errorf("preview.format %q (want webp or tga)", c.Preview.Format))
	}
	if c.Preview.Width < 1 || c.Preview.Height < 1 {
		errs = append(errs, fmt.Errorf("preview size %dx%d must be positive", c.Preview.Width, c.Preview.Height))
	}
	if c.Preview.Supersample < 1 {
		errs = append(errs, fmt.Errorf("preview.supersample %d must be at least 1", c.Preview.Supersample))
	}
	if c.Preview.Workers < 1 {
		errs = append(errs, fmt.Errorf("preview.workers %d must be at least 1", c.Preview.Workers))
	}
	if c.Preview.Every < 0 {
		errs = append(errs, fmt.Errorf("preview.every %d is negative", c.Preview.Every))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Count      int
	MoveSpeed  float64
	RotSpeed   float64
	FPS        int
	Seed       uint64
	Addr       string
	PreviewDir string
	Workers    int
}

// Build runs the full chain: defaults → file (optional) → env → flags → validate.
// Out-of-range values from any layer are rejected, never replaced by defaults.
func Build(path string, flags Flags) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = Load(path)
		if err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyFlags(flags)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

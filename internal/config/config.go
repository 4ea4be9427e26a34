package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRelaxation  = 10
	DefaultDamperK     = 0.05
	DefaultBoxK        = 0.95
	DefaultAttractionK = 0.05
	DefaultCollisionK  = 0.95
	DefaultFillRatio   = 0.6
	DefaultMinBall     = 0.05
	DefaultMaxBall     = 0.1
	DefaultStabilize   = 100
	DefaultFPS         = 60
	DefaultWidth       = 160
	DefaultHeight      = 88
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Sandbox SandboxConfig `yaml:"sandbox"`
	View    ViewConfig    `yaml:"view"`
	Store   StoreConfig   `yaml:"store"`
	Server  ServerConfig  `yaml:"server"`
}

type SandboxConfig struct {
	Relaxation  int     `yaml:"relaxation"`
	DamperK     float64 `yaml:"damper_k"`
	BoxK        float64 `yaml:"box_k"`
	AttractionK float64 `yaml:"attraction_k"`
	CollisionK  float64 `yaml:"collision_k"`
	// FillRatio is the share of the left chamber area covered at reset.
	FillRatio float64 `yaml:"fill_ratio"`
	// MinBall and MaxBall bound radii as fractions of the shorter chamber side.
	MinBall     float64 `yaml:"min_ball"`
	MaxBall     float64 `yaml:"max_ball"`
	Stabilize   int     `yaml:"stabilize_steps"`
	DamperColor string  `yaml:"damper_color"`
	BoxColor    string  `yaml:"box_color"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
}

type ViewConfig struct {
	FPS int `yaml:"fps"`
}

type StoreConfig struct {
	Backend  string `yaml:"backend"`
	Dir      string `yaml:"dir"`
	RedisURL string `yaml:"redis_url"`
	Key      string `yaml:"key"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// TickMillis is the simulation cadence of the served sandbox.
	TickMillis int `yaml:"tick_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		Sandbox: SandboxConfig{
			Relaxation:  DefaultRelaxation,
			DamperK:     DefaultDamperK,
			BoxK:        DefaultBoxK,
			AttractionK: DefaultAttractionK,
			CollisionK:  DefaultCollisionK,
			FillRatio:   DefaultFillRatio,
			MinBall:     DefaultMinBall,
			MaxBall:     DefaultMaxBall,
			Stabilize:   DefaultStabilize,
			DamperColor: "rgba(0,0,255,0.2)",
			BoxColor:    "rgba(255,0,0,0.2)",
			Width:       DefaultWidth,
			Height:      DefaultHeight,
		},
		View: ViewConfig{FPS: DefaultFPS},
		Store: StoreConfig{
			Backend:  "file",
			Dir:      ".ballbox",
			RedisURL: "redis://localhost:6379/0",
			Key:      "ballbox:snapshot",
		},
		Server: ServerConfig{
			Addr:       ":8080",
			TickMillis: 15,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv loads a .env file when present and lets BALLBOX_* variables
// override file values.
func (c *Config) ApplyEnv(files ...string) {
	_ = godotenv.Load(files...)

	c.Store.Backend = getEnv("BALLBOX_STORE", c.Store.Backend)
	c.Store.Dir = getEnv("BALLBOX_DATA_DIR", c.Store.Dir)
	c.Store.RedisURL = getEnv("BALLBOX_REDIS_URL", c.Store.RedisURL)
	c.Store.Key = getEnv("BALLBOX_REDIS_KEY", c.Store.Key)
	c.Server.Addr = getEnv("BALLBOX_ADDR", c.Server.Addr)
	c.Server.TickMillis = getEnvInt("BALLBOX_TICK_MS", c.Server.TickMillis)
	c.View.FPS = getEnvInt("BALLBOX_FPS", c.View.FPS)
	c.Sandbox.Relaxation = getEnvInt("BALLBOX_RELAXATION", c.Sandbox.Relaxation)
}

func (c *Config) Validate() error {
	s := c.Sandbox
	switch {
	case s.Relaxation < 0:
		return fmt.Errorf("%w: relaxation must be non-negative, got %d", ErrInvalid, s.Relaxation)
	case s.MinBall <= 0 || s.MaxBall < s.MinBall:
		return fmt.Errorf("%w: ball size range [%g, %g]", ErrInvalid, s.MinBall, s.MaxBall)
	case s.FillRatio <= 0 || s.FillRatio >= 1:
		return fmt.Errorf("%w: fill ratio must be in (0, 1), got %g", ErrInvalid, s.FillRatio)
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: size %gx%g", ErrInvalid, s.Width, s.Height)
	case c.View.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.View.FPS)
	case c.Server.TickMillis <= 0:
		return fmt.Errorf("%w: tick must be positive, got %d", ErrInvalid, c.Server.TickMillis)
	}
	for name, k := range map[string]float64{
		"damper_k": s.DamperK, "box_k": s.BoxK, "attraction_k": s.AttractionK, "collision_k": s.CollisionK,
	} {
		if k < 0 || k > 1 {
			return fmt.Errorf("%w: %s must be in [0, 1], got %g", ErrInvalid, name, k)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

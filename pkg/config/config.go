// Package config loads brickguide settings from a TOML file and the
// environment.
//
// Lookup order for the file: the explicit path, then $BRICKGUIDE_CONFIG,
// then ./brickguide.toml if it exists. Without a file the defaults apply.
// Environment variables override file values:
//
//	ASSYS_SERVER_URL            server.url (used by acknowledgment clients)
//	BRICKGUIDE_ADDR             server.addr
//	BRICKGUIDE_BLUEPRINTS_DIR   blueprints.dir
//	BRICKGUIDE_MONGO_URI        blueprints.mongo_uri
//	BRICKGUIDE_REDIS_ADDR       redis.addr
//	BRICKGUIDE_SESSION_BACKEND  sessions.backend
//	BRICKGUIDE_CACHE_BACKEND    cache.backend
//	BRICKGUIDE_ARTNET_HOST      pickbylight.host (and enables it)
package config

import (
	"fmt"
	"image/color"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/pickbylight"
	"github.com/assys/brickguide/pkg/render"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "brickguide.toml"

// Backend names.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Blueprints  BlueprintsConfig  `toml:"blueprints"`
	Sessions    SessionsConfig    `toml:"sessions"`
	Cache       CacheConfig       `toml:"cache"`
	Redis       RedisConfig       `toml:"redis"`
	Render      RenderConfig      `toml:"render"`
	PickByLight PickByLightConfig `toml:"pickbylight"`
}

type ServerConfig struct {
	Addr    string `toml:"addr"`
	URL     string `toml:"url"`
	Metrics bool   `toml:"metrics"`
}

type BlueprintsConfig struct {
	Dir             string        `toml:"dir"`
	MongoURI        string        `toml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection"`
	CacheTTL        time.Duration `toml:"cache_ttl"`
}

type SessionsConfig struct {
	Backend string        `toml:"backend"`
	TTL     time.Duration `toml:"ttl"`
	Dir     string        `toml:"dir"`
}

// CacheConfig selects the store for rendered images and loaded blueprints.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type RenderConfig struct {
	Format     string  `toml:"format"`
	Scale      float64 `toml:"scale"`
	GridWidth  int     `toml:"grid_width"`
	GridHeight int     `toml:"grid_height"`
	// Colors overrides color tokens, e.g. gray = "#a0a0a0".
	Colors map[string]string `toml:"colors"`
}

type PickByLightConfig struct {
	Enabled  bool              `toml:"enabled"`
	Host     string            `toml:"host"`
	Port     int               `toml:"port"`
	Universe int               `toml:"universe"`
	LEDCount int               `toml:"led_count"`
	Color    []int             `toml:"color"`
	Bins     []pickbylight.Bin `toml:"bins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":5000",
			URL:  "http://localhost:5000",
		},
		Blueprints: BlueprintsConfig{
			Dir:             "blueprints",
			MongoDatabase:   "brickguide",
			MongoCollection: "blueprints",
			CacheTTL:        5 * time.Minute,
		},
		Sessions: SessionsConfig{
			Backend: BackendMemory,
			TTL:     8 * time.Hour,
		},
		Cache: CacheConfig{
			Backend: BackendMemory,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "brickguide:",
		},
		Render: RenderConfig{
			Format:     string(render.FormatPNG),
			Scale:      40,
			GridWidth:  brick.DefaultGrid.Width,
			GridHeight: brick.DefaultGrid.Height,
		},
		PickByLight: PickByLightConfig{
			Port:     pickbylight.DefaultPort,
			LEDCount: 16,
			Color:    []int{255, 255, 255},
		},
	}
}

// Load reads the configuration file (see package doc for lookup), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("BRICKGUIDE_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables looked up with
// getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Server.URL, "ASSYS_SERVER_URL")
	set(&c.Server.Addr, "BRICKGUIDE_ADDR")
	set(&c.Blueprints.Dir, "BRICKGUIDE_BLUEPRINTS_DIR")
	set(&c.Blueprints.MongoURI, "BRICKGUIDE_MONGO_URI")
	set(&c.Redis.Addr, "BRICKGUIDE_REDIS_ADDR")
	set(&c.Sessions.Backend, "BRICKGUIDE_SESSION_BACKEND")
	set(&c.Cache.Backend, "BRICKGUIDE_CACHE_BACKEND")
	if host := strings.TrimSpace(getenv("BRICKGUIDE_ARTNET_HOST")); host != "" {
		c.PickByLight.Host = host
		c.PickByLight.Enabled = true
	}
}

// Validate checks the configuration for values the application cannot
// run with.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidInput, "config: "+format, args...)
	}
	if c.Server.Addr == "" {
		return invalid("server.addr is required")
	}
	if !slices.Contains([]string{BackendMemory, BackendFile, BackendRedis}, c.Sessions.Backend) {
		return invalid("sessions.backend must be memory, file or redis, got %q", c.Sessions.Backend)
	}
	if c.Sessions.TTL <= 0 {
		return invalid("sessions.ttl must be positive")
	}
	if !slices.Contains([]string{BackendNone, BackendMemory, BackendFile, BackendRedis}, c.Cache.Backend) {
		return invalid("cache.backend must be none, memory, file or redis, got %q", c.Cache.Backend)
	}
	if _, err := render.ParseFormat(c.Render.Format); err != nil {
		return err
	}
	if c.Render.Scale <= 0 {
		return invalid("render.scale must be positive")
	}
	if c.Render.GridWidth <= 0 || c.Render.GridHeight <= 0 {
		return invalid("render grid must be positive, got %dx%d", c.Render.GridWidth, c.Render.GridHeight)
	}
	for token, value := range c.Render.Colors {
		if _, ok := brick.NewPalette(nil).Resolve(value); !ok {
			return invalid("render.colors.%s: unknown color %q", token, value)
		}
	}
	if c.Blueprints.Dir == "" && c.Blueprints.MongoURI == "" {
		return invalid("blueprints.dir or blueprints.mongo_uri is required")
	}
	if c.PickByLight.Enabled {
		p := c.PickByLight
		if p.Host == "" {
			return invalid("pickbylight.host is required when enabled")
		}
		if p.Port <= 0 || p.Port > 65535 {
			return invalid("pickbylight.port out of range: %d", p.Port)
		}
		if p.LEDCount <= 0 || p.LEDCount > 170 {
			return invalid("pickbylight.led_count must be in [1, 170], got %d", p.LEDCount)
		}
		if len(p.Color) != 3 {
			return invalid("pickbylight.color must have 3 components, got %d", len(p.Color))
		}
		for _, v := range p.Color {
			if v < 0 || v > 255 {
				return invalid("pickbylight.color component out of range: %d", v)
			}
		}
	}
	return nil
}

// Grid returns the configured building plate.
func (c *Config) Grid() brick.Grid {
	return brick.Grid{Width: c.Render.GridWidth, Height: c.Render.GridHeight}
}

// Palette returns a palette with the configured color overrides.
func (c *Config) Palette() *brick.Palette {
	p := brick.NewPalette(nil)
	for token, value := range c.Render.Colors {
		p.Register(token, p.Color(value))
	}
	return p
}

// LEDColor returns the default highlight color.
func (c *Config) LEDColor() color.RGBA {
	col := c.PickByLight.Color
	if len(col) != 3 {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return color.RGBA{R: uint8(col[0]), G: uint8(col[1]), B: uint8(col[2]), A: 255}
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return b.String()
}

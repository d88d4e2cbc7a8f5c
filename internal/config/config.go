// Package config loads depforce settings from a TOML or YAML file, a .env
// file and DEPFORCE_* environment variables, in that order of precedence
// from lowest to highest.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/depforce/internal/validation"
	"github.com/matzehuels/depforce/pkg/cache"
	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/force"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/pipeline"
	"github.com/matzehuels/depforce/pkg/server"
	"github.com/matzehuels/depforce/pkg/source"
)

const appName = "depforce"

// EnvFile is the dotenv file read from the working directory.
const EnvFile = ".env"

// Config is the full set of file-configurable settings.
type Config struct {
	Layout Layout       `toml:"layout" yaml:"layout"`
	Forces force.Params `toml:"forces" yaml:"forces"`
	Source Source       `toml:"source" yaml:"source"`
	Server Server       `toml:"server" yaml:"server"`
	Cache  cache.Config `toml:"cache" yaml:"cache"`
}

// Layout holds the defaults for layout and render commands.
type Layout struct {
	Width     float64  `toml:"width" yaml:"width" validate:"gt=0,finite"`
	Height    float64  `toml:"height" yaml:"height" validate:"gt=0,finite"`
	Seed      uint64   `toml:"seed" yaml:"seed"`
	Placement string   `toml:"placement" yaml:"placement" validate:"oneof=phyllotaxis random"`
	MaxTicks  int      `toml:"max_ticks" yaml:"max_ticks" validate:"gte=0"`
	Theme     string   `toml:"theme" yaml:"theme" validate:"oneof=dark light"`
	Formats   []string `toml:"formats" yaml:"formats" validate:"dive,oneof=svg html dot png jpg json"`
	Tooltips  bool     `toml:"tooltips" yaml:"tooltips"`
	Labels    bool     `toml:"labels" yaml:"labels"`
}

// Source configures where snapshots come from.
type Source struct {
	Endpoint string        `toml:"endpoint" yaml:"endpoint" validate:"required,url"`
	Attempts int           `toml:"attempts" yaml:"attempts" validate:"gte=1"`
	Delay    time.Duration `toml:"delay" yaml:"delay" validate:"gte=0"`
}

// Server configures the live view.
type Server struct {
	Addr         string        `toml:"addr" yaml:"addr" validate:"required,hostname_port"`
	MaxFPS       float64       `toml:"max_fps" yaml:"max_fps" validate:"gte=0"`
	TickInterval time.Duration `toml:"tick_interval" yaml:"tick_interval" validate:"gte=0"`
}

// Default returns the built-in settings. The cache lives under the user
// cache directory when one can be determined.
func Default() *Config {
	sc := server.DefaultConfig()
	cfg := &Config{
		Layout: Layout{
			Width:     pipeline.DefaultWidth,
			Height:    pipeline.DefaultHeight,
			Seed:      pipeline.DefaultSeed,
			Placement: pipeline.DefaultPlacement,
			Theme:     graph.ThemeDark,
			Formats:   append([]string(nil), pipeline.DefaultFormats...),
		},
		Forces: force.DefaultParams(),
		Source: Source{
			Endpoint: source.DefaultEndpoint,
			Attempts: source.DefaultAttempts,
			Delay:    source.DefaultDelay,
		},
		Server: Server{
			Addr:         sc.Addr,
			MaxFPS:       sc.MaxFPS,
			TickInterval: sc.TickInterval,
		},
		Cache: cache.Config{Backend: cache.BackendMemory},
	}
	if dir, err := CacheDir(); err == nil {
		cfg.Cache = cache.Config{Backend: cache.BackendFile, Dir: dir}
	}
	return cfg
}

// Load reads path over the defaults, then applies .env and environment
// overrides and validates the result. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		err := cfg.readFile(path)
		if err != nil && (explicit || !errors.Is(err, errors.ErrCodeFileNotFound)) {
			return nil, err
		}
	}

	if err := godotenv.Load(EnvFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", EnvFile)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml", "":
		_, err = toml.Decode(string(data), c)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "config %s: unsupported extension %q", path, filepath.Ext(path))
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return nil
}

// Validate checks every table. Redis and Mongo settings are checked only
// when their backend is selected.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if err := c.Forces.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case cache.BackendRedis:
		return validation.Struct(c.Cache.Redis)
	case cache.BackendMongo:
		return validation.Struct(c.Cache.Mongo)
	case cache.BackendFile:
		if c.Cache.Dir == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.dir is required for the file backend")
		}
	}
	return nil
}

// Save writes c to path as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

// PipelineOptions returns the layout table as pipeline options for src.
func (c *Config) PipelineOptions(src string) pipeline.Options {
	params := c.Forces
	return pipeline.Options{
		Source:    src,
		Width:     c.Layout.Width,
		Height:    c.Layout.Height,
		Seed:      c.Layout.Seed,
		Placement: c.Layout.Placement,
		MaxTicks:  c.Layout.MaxTicks,
		Params:    &params,
		Formats:   append([]string(nil), c.Layout.Formats...),
		Theme:     c.Layout.Theme,
		Tooltips:  c.Layout.Tooltips,
		Labels:    c.Layout.Labels,
	}
}

// ServerConfig returns the server table with the shared seed and forces.
func (c *Config) ServerConfig() server.Config {
	return server.Config{
		Addr:         c.Server.Addr,
		MaxFPS:       c.Server.MaxFPS,
		TickInterval: c.Server.TickInterval,
		Seed:         c.Layout.Seed,
		Params:       c.Forces,
	}
}

// SourceOptions returns client options for the source table.
func (c *Config) SourceOptions() []source.Option {
	return []source.Option{
		source.WithEndpoint(c.Source.Endpoint),
		source.WithRetry(c.Source.Attempts, c.Source.Delay),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/depforce/config.toml, falling back
// to the platform config directory.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/depforce/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

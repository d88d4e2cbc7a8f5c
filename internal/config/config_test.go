package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/depforce/pkg/cache"
	"github.com/matzehuels/depforce/pkg/errors"
)

// isolate points the XDG directories and the working directory at fresh
// temp dirs and clears every override.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for name := range envVars {
		t.Setenv(EnvPrefix+name, "")
		os.Unsetenv(EnvPrefix + name)
	}
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefault(t *testing.T) {
	dir := isolate(t)
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Layout.Width != 800 || cfg.Layout.Height != 600 || cfg.Layout.Theme != "dark" {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Forces.LinkDistance != 100 || cfg.Forces.ChargeStrength != -350 {
		t.Errorf("forces = %+v", cfg.Forces)
	}
	if cfg.Cache.Backend != cache.BackendFile || cfg.Cache.Dir != filepath.Join(dir, "cache", "depforce") {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadMissing(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") without a config file error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}

	_, err = Load("nope.toml")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", "depforce", "config.toml"), `
[layout]
width = 1024.0
theme = "light"
formats = ["svg", "dot"]

[forces]
charge_strength = -200.0

[server]
addr = ":9090"
tick_interval = "5ms"

[cache]
backend = "memory"
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Layout.Width != 1024 || cfg.Layout.Height != 600 {
		t.Errorf("size = %vx%v, want 1024x600", cfg.Layout.Width, cfg.Layout.Height)
	}
	if cfg.Layout.Theme != "light" || !reflect.DeepEqual(cfg.Layout.Formats, []string{"svg", "dot"}) {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Forces.ChargeStrength != -200 || cfg.Forces.LinkDistance != 100 {
		t.Errorf("forces = %+v", cfg.Forces)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.TickInterval != 5*time.Millisecond {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Cache.Backend != cache.BackendMemory {
		t.Errorf("cache backend = %q", cfg.Cache.Backend)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "depforce.yaml")
	writeFile(t, path, `
layout:
  height: 480
  seed: 7
source:
  endpoint: http://analyzer:3000/analyze
  attempts: 5
cache:
  backend: redis
  redis:
    addr: localhost:6379
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Layout.Height != 480 || cfg.Layout.Seed != 7 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Source.Endpoint != "http://analyzer:3000/analyze" || cfg.Source.Attempts != 5 {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.Redis.Addr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errors.Code
	}{
		{"bad toml", "c.toml", "[layout\nwidth = ", errors.ErrCodeInvalidInput},
		{"unknown extension", "c.ini", "width=1", errors.ErrCodeInvalidFormat},
		{"bad theme", "c.toml", "[layout]\ntheme = \"neon\"", errors.ErrCodeInvalidInput},
		{"negative width", "c.toml", "[layout]\nwidth = -1.0", errors.ErrCodeInvalidInput},
		{"bad forces", "c.toml", "[forces]\nlink_distance = 0.0", errors.ErrCodeInvalidInput},
		{"redis without addr", "c.toml", "[cache]\nbackend = \"redis\"", errors.ErrCodeInvalidInput},
		{"mongo without uri", "c.yml", "cache:\n  backend: mongo", errors.ErrCodeInvalidInput},
		{"file without dir", "c.toml", "[cache]\nbackend = \"file\"\ndir = \"\"", errors.ErrCodeInvalidInput},
		{"bad backend", "c.toml", "[cache]\nbackend = \"s3\"", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, tt.content)
			_, err := Load(path)
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, EnvFile), "DEPFORCE_THEME=light\nDEPFORCE_ADDR=0.0.0.0:7000\n")
	t.Setenv("DEPFORCE_ADDR", "127.0.0.1:7001")
	t.Setenv("DEPFORCE_TICK_INTERVAL", "2ms")
	t.Setenv("DEPFORCE_SEED", "99")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Layout.Theme != "light" {
		t.Errorf("theme = %q, want light from %s", cfg.Layout.Theme, EnvFile)
	}
	if cfg.Server.Addr != "127.0.0.1:7001" {
		t.Errorf("addr = %q, environment should win over %s", cfg.Server.Addr, EnvFile)
	}
	if cfg.Server.TickInterval != 2*time.Millisecond || cfg.Layout.Seed != 99 {
		t.Errorf("tick = %v seed = %d", cfg.Server.TickInterval, cfg.Layout.Seed)
	}

	t.Setenv("DEPFORCE_WIDTH", "wide")
	if _, err := Load(""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load() with DEPFORCE_WIDTH=wide error = %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := isolate(t)
	cfg := Default()
	cfg.Layout.Theme = "light"
	cfg.Layout.Tooltips = true
	cfg.Forces.ChargeTheta = 0.9
	cfg.Server.TickInterval = 3 * time.Millisecond
	cfg.Cache.Redis.Addr = "redis:6379"

	path := filepath.Join(dir, "out", "config.toml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestDerivedOptions(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.Layout.Seed = 5
	cfg.Forces.CenterStrength = 0.5

	opts := cfg.PipelineOptions("graph.json")
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("PipelineOptions().ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Source != "graph.json" || opts.Seed != 5 || opts.Params.CenterStrength != 0.5 {
		t.Errorf("pipeline options = %+v", opts)
	}
	opts.Params.CenterStrength = 2
	if cfg.Forces.CenterStrength != 0.5 {
		t.Error("PipelineOptions must not alias the config's forces")
	}

	sc := cfg.ServerConfig()
	if sc.Seed != 5 || sc.Params.CenterStrength != 0.5 || sc.Addr != cfg.Server.Addr {
		t.Errorf("server config = %+v", sc)
	}
	if n := len(cfg.SourceOptions()); n != 2 {
		t.Errorf("SourceOptions() = %d options, want 2", n)
	}
}

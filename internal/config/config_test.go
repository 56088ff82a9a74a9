package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
)

// isolate runs the test from an empty directory with HOME pointing at it, so
// no real .orrery.toml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New(""))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Mode", cfg.Layout.Mode, "radial"},
		{"DepthSpacing", cfg.Layout.DepthSpacing, 200.0},
		{"RootsShareCircle", cfg.Layout.RootsShareCircle, true},
		{"RootWeighting", cfg.Layout.RootWeighting, "equal"},
		{"BaseSpeed", cfg.Layout.BaseSpeed, 0.8},
		{"Epsilon", cfg.Layout.Epsilon, 1e-3},
		{"MaxDepth", cfg.Layout.MaxDepth, 1000},
		{"Seed", cfg.Layout.Seed, uint64(42)},
		{"Addr", cfg.Server.Addr, ":8080"},
		{"ShutdownTimeout", cfg.Server.ShutdownTimeout, 10 * time.Second},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "depth_spacing",
			envKey: "ORRERY_LAYOUT_DEPTH_SPACING",
			envVal: "120",
			field:  func(c Config) any { return c.Layout.DepthSpacing },
			want:   120.0,
		},
		{
			name:   "mode",
			envKey: "ORRERY_LAYOUT_MODE",
			envVal: "jitter",
			field:  func(c Config) any { return c.Layout.Mode },
			want:   "jitter",
		},
		{
			name:   "seed",
			envKey: "ORRERY_LAYOUT_SEED",
			envVal: "7",
			field:  func(c Config) any { return c.Layout.Seed },
			want:   uint64(7),
		},
		{
			name:   "redis_url",
			envKey: "ORRERY_SERVER_REDIS_URL",
			envVal: "redis://localhost:6379/0",
			field:  func(c Config) any { return c.Server.RedisURL },
			want:   "redis://localhost:6379/0",
		},
		{
			name:   "read_timeout",
			envKey: "ORRERY_SERVER_READ_TIMEOUT",
			envVal: "5s",
			field:  func(c Config) any { return c.Server.ReadTimeout },
			want:   5 * time.Second,
		},
		{
			name:   "verbose",
			envKey: "ORRERY_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load(New(""))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if got := tt.field(cfg); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	src := `
verbose = true

[layout]
depth_spacing = 80
root_weighting = "subtree"
roots_share_circle = false

[server]
addr = "127.0.0.1:9000"
`
	if err := os.WriteFile(filepath.Join(dir, ".orrery.toml"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	v := New("")
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !strings.HasSuffix(File(v), ".orrery.toml") {
		t.Errorf("File() = %q", File(v))
	}
	if cfg.Layout.DepthSpacing != 80 || cfg.Layout.RootWeighting != "subtree" || cfg.Layout.RootsShareCircle {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || !cfg.Verbose {
		t.Errorf("server = %+v verbose = %v", cfg.Server, cfg.Verbose)
	}
	// Unset keys keep defaults.
	if cfg.Layout.BaseSpeed != 0.8 {
		t.Errorf("BaseSpeed = %v, want default", cfg.Layout.BaseSpeed)
	}

	t.Setenv("ORRERY_LAYOUT_DEPTH_SPACING", "90")
	cfg, err = Load(New(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.DepthSpacing != 90 {
		t.Errorf("env should override file: DepthSpacing = %v", cfg.Layout.DepthSpacing)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(New(filepath.Join(dir, "nope.toml")))
	if !orerrors.Is(err, orerrors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{"mode", func(c *Config) { c.Layout.Mode = "spiral" }, "layout.mode must be one of: radial jitter"},
		{"depth spacing", func(c *Config) { c.Layout.DepthSpacing = 0 }, "layout.depth_spacing must be greater than 0"},
		{"epsilon", func(c *Config) { c.Layout.Epsilon = -1 }, "layout.epsilon"},
		{"padding", func(c *Config) { c.Layout.Padding = -1 }, "layout.padding must be at least 0"},
		{"max depth", func(c *Config) { c.Layout.MaxDepth = -2 }, "layout.max_depth"},
		{"weighting", func(c *Config) { c.Layout.RootWeighting = "random" }, "layout.root_weighting"},
		{"addr", func(c *Config) { c.Server.Addr = "" }, "server.addr is required"},
		{"redis url", func(c *Config) { c.Server.RedisURL = "not a url" }, "server.redis_url must be a URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if !orerrors.Is(err, orerrors.ErrCodeInvalidConfig) {
				t.Fatalf("Validate() = %v, want INVALID_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.wantKey) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.wantKey)
			}
		})
	}

	if err := Validate(Defaults()); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLayoutConfig_Options(t *testing.T) {
	cfg := Defaults().Layout
	cfg.RootsShareCircle = false
	opts := cfg.Options()
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatalf("ValidateForLayout() = %v", err)
	}
	if opts.SharesCircle() {
		t.Error("roots_share_circle=false should carry over")
	}
	if opts.DepthSpacing != 200 {
		t.Errorf("DepthSpacing = %v", opts.DepthSpacing)
	}
}

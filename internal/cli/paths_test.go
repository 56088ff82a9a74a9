package cli

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/orrery/internal/config"
)

func TestCacheDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	c := &CLI{Config: config.Config{Cache: config.CacheConfig{Dir: "/srv/orrery-cache"}}}

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/srv/orrery-cache" {
		t.Errorf("cacheDir() = %q, want configured dir", dir)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, input, suffix string
		want                  string
	}{
		{"", "genres.json", planetsSuffix, "genres.planets.json"},
		{"", "data/genres.toml", planetsSuffix, "data/genres.planets.json"},
		{"", "genres.planets.json", ".svg", "genres.planets.svg"},
		{"out.json", "genres.json", planetsSuffix, "out.json"},
		{"", "names.hierarchy.json", planetsSuffix, "names.hierarchy.planets.json"},
		{"", "names", ".hierarchy.json", "names.hierarchy.json"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.input, tt.suffix); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.output, tt.input, tt.suffix, got, tt.want)
		}
	}
}

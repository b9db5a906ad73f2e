package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/mathfmt/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir(config.CacheConfig{})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir(config.CacheConfig{})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirConfigured(t *testing.T) {
	dir, err := cacheDir(config.CacheConfig{Dir: "/var/cache/mathfmt"})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/var/cache/mathfmt" {
		t.Errorf("cacheDir() = %q", dir)
	}
}

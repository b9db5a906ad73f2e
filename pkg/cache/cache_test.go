package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("<math/>"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit {
		t.Fatalf("Get(key) = %v, %v; want hit", hit, err)
	}
	if string(data) != "<math/>" {
		t.Errorf("Get(key) = %q, want %q", data, "<math/>")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestFileCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get after expiry = %v, %v; want miss", hit, err)
	}
	if _, err := os.Stat(c.path("key")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := os.WriteFile(c.path("key"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v; want miss", hit, err)
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir not empty after Clear: %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}

	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	k1 := k.RenderKey("remote", `\sin x`)
	if !strings.HasPrefix(k1, "render:") {
		t.Errorf("RenderKey should be prefixed with render:, got %s", k1)
	}
	if strings.Contains(k1, `\sin`) {
		t.Error("RenderKey must not contain raw TeX")
	}
	if k1 != k.RenderKey("remote", `\sin x`) {
		t.Error("RenderKey should be deterministic")
	}
	if k1 == k.RenderKey("local", `\sin x`) {
		t.Error("Different backends should produce different keys")
	}
	if k.RenderKey("ab", "c") == k.RenderKey("a", "bc") {
		t.Error("Key parts must not be ambiguous")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")
	key := scoped.RenderKey("remote", "x")
	if !strings.HasPrefix(key, "staging:render:") {
		t.Errorf("ScopedKeyer RenderKey should be prefixed: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().RenderKey("remote", "x")
	if got := scoped.RenderKey("remote", "x"); got != want {
		t.Errorf("RenderKey with nil inner = %s, want %s", got, want)
	}
}

// TestRedisCache runs against a live server when MATHFMT_TEST_REDIS is set,
// e.g. MATHFMT_TEST_REDIS=localhost:6379.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("MATHFMT_TEST_REDIS")
	if addr == "" {
		t.Skip("MATHFMT_TEST_REDIS not set")
	}
	ctx := context.Background()

	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "mathfmt-test:" + Hash([]byte(t.Name()))
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v; want miss", hit, err)
	}
	if err := c.Set(ctx, key, []byte("<math/>"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "<math/>" {
		t.Errorf("Get(key) = %q, %v, %v", data, hit, err)
	}
}

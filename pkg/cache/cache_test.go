package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/timenexus/timenexus/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
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

	opts := ExtractionKeyOpts{
		Sources: []string{"b", "a"},
		Targets: []string{"c"},
		Params:  map[string]any{"k": 50},
	}
	key := k.ExtractionKey("pathlinker", "abc", opts)
	if !strings.HasPrefix(key, "extract:pathlinker:") {
		t.Errorf("ExtractionKey prefix: %q", key)
	}

	reordered := opts
	reordered.Sources = []string{"a", "b"}
	if k.ExtractionKey("pathlinker", "abc", reordered) != key {
		t.Error("query order should not change the key")
	}

	tests := []struct {
		name    string
		service string
		slice   string
		opts    ExtractionKeyOpts
	}{
		{"service", "anat", "abc", opts},
		{"slice", "pathlinker", "abd", opts},
		{"targets", "pathlinker", "abc", ExtractionKeyOpts{Sources: opts.Sources, Params: opts.Params}},
		{"params", "pathlinker", "abc", ExtractionKeyOpts{Sources: opts.Sources, Targets: opts.Targets, Params: map[string]any{"k": 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if k.ExtractionKey(tt.service, tt.slice, tt.opts) == key {
				t.Errorf("changing %s should change the key", tt.name)
			}
		})
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	k := NewScopedKeyer(inner, "user:1:")

	opts := ExtractionKeyOpts{Sources: []string{"a"}}
	if got, want := k.ExtractionKey("s", "h", opts), "user:1:"+inner.ExtractionKey("s", "h", opts); got != want {
		t.Errorf("ExtractionKey = %q, want %q", got, want)
	}
	if got, want := NewScopedKeyer(nil, "p:").ExtractionKey("s", "h", opts), "p:"+inner.ExtractionKey("s", "h", opts); got != want {
		t.Error("nil inner keyer should default")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("empty cache should miss")
	}
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("ttl 0 should never expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
}

func TestLRUCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRUCache(2)
	if err != nil {
		t.Fatal(err)
	}

	buf := []byte("one")
	_ = c.Set(ctx, "1", buf, 0)
	buf[0] = 'X'
	if data, hit, _ := c.Get(ctx, "1"); !hit || string(data) != "one" {
		t.Errorf("Get(1) = %q, %v", data, hit)
	}

	_ = c.Set(ctx, "2", []byte("two"), 0)
	_, _, _ = c.Get(ctx, "1")
	_ = c.Set(ctx, "3", []byte("three"), 0)
	if _, hit, _ := c.Get(ctx, "2"); hit {
		t.Error("least recently used entry should be evicted")
	}
	if _, hit, _ := c.Get(ctx, "1"); !hit {
		t.Error("recently read entry should be kept")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	_ = c.Set(ctx, "short", []byte("x"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}

	_ = c.Delete(ctx, "1")
	if _, hit, _ := c.Get(ctx, "1"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Close(); err != nil || c.Len() != 0 {
		t.Errorf("Close: %v, Len = %d", err, c.Len())
	}
}

func TestCompressed(t *testing.T) {
	ctx := context.Background()
	inner, _ := NewLRUCache(0)
	c := Compressed{Inner: inner}

	payload := bytes.Repeat([]byte("timenexus "), 100)
	if err := c.Set(ctx, "key", payload, 0); err != nil {
		t.Fatal(err)
	}
	raw, _, _ := inner.Get(ctx, "key")
	if len(raw) >= len(payload) {
		t.Errorf("stored %d bytes for a %d-byte payload", len(raw), len(payload))
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || !bytes.Equal(data, payload) {
		t.Fatalf("round trip failed: hit=%v err=%v", hit, err)
	}

	_ = inner.Set(ctx, "garbage", []byte{0xff, 0xff, 0xff}, 0)
	if _, hit, err := c.Get(ctx, "garbage"); hit || err != nil {
		t.Errorf("undecodable entry: hit=%v err=%v", hit, err)
	}
}

func TestInstrumented(t *testing.T) {
	defer observability.Reset()
	reg := prometheus.NewRegistry()
	p := observability.NewPrometheus(reg)
	observability.SetCacheHooks(p)

	ctx := context.Background()
	c := Instrumented{Inner: mustLRU(t), KeyType: "extraction"}

	_, _, _ = c.Get(ctx, "key")
	_ = c.Set(ctx, "key", []byte("12345"), 0)
	_, _, _ = c.Get(ctx, "key")

	for event, want := range map[string]float64{"hit": 1, "miss": 1, "set": 1} {
		if got := testutil.ToFloat64(p.CacheEvents.WithLabelValues("extraction", event)); got != want {
			t.Errorf("%s events = %v, want %v", event, got, want)
		}
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TIMENEXUS_TEST_REDIS")
	if addr == "" {
		t.Skip("TIMENEXUS_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: "timenexus-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if data, hit, err := c.Get(ctx, "key"); err != nil || !hit || string(data) != "value" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	_ = c.Delete(ctx, "key")
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("deleted key should miss")
	}
}

func mustLRU(t *testing.T) *LRUCache {
	t.Helper()
	c, err := NewLRUCache(16)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
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

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// SourceKey
	srcKey := k.SourceKey("mermaid", "abc123")
	if srcKey != "parse:mermaid:abc123" {
		t.Errorf("SourceKey unexpected: %s", srcKey)
	}

	// ArtifactKey should include options in hash
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Dialect: "mermaid", Zoom: 1.0})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Dialect: "mermaid", Zoom: 2.0})
	if ak1 == ak2 {
		t.Error("Different zoom should produce different keys")
	}

	ak3 := k.ArtifactKey("hash123", ArtifactKeyOpts{Dialect: "mermaid", Zoom: 1.0, Tool: "d2"})
	if ak1 == ak3 {
		t.Error("Different tool should produce different keys")
	}

	// ProbeKey
	if k.ProbeKey("d2") != "probe:d2" {
		t.Errorf("ProbeKey unexpected: %s", k.ProbeKey("d2"))
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "srv:")

	// All keys should be prefixed
	srcKey := scoped.SourceKey("d2", "abc")
	if srcKey != "srv:parse:d2:abc" {
		t.Errorf("ScopedKeyer SourceKey unexpected: %s", srcKey)
	}

	artKey := scoped.ArtifactKey("abc", ArtifactKeyOpts{})
	if len(artKey) < 4 || artKey[:4] != "srv:" {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", artKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ProbeKey("diagon")
	if key != "prefix:probe:diagon" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestMemoryCacheLRU(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	defer c.Close()

	if err := c.Set(ctx, "a", []byte("1"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Set(ctx, "b", []byte("2"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Touch "a" so "b" becomes the eviction candidate.
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Fatal("expected hit for a")
	}

	if err := c.Set(ctx, "c", []byte("3"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("b should have been evicted")
	}
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Error("a should survive eviction")
	}
	if _, hit, _ := c.Get(ctx, "c"); !hit {
		t.Error("c should be present")
	}
	if c.Len() != 2 {
		t.Errorf("Len should be 2, got %d", c.Len())
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}
}

func TestMemoryCacheUpdate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	defer c.Close()

	_ = c.Set(ctx, "k", []byte("old"), 0)
	_ = c.Set(ctx, "k", []byte("new"), 0)

	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if string(data) != "new" {
		t.Errorf("expected updated value, got %q", data)
	}
	if c.Len() != 1 {
		t.Errorf("update should not grow the cache: %d", c.Len())
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expected miss before Set")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit || string(data) != "value" {
		t.Errorf("Get after Set: hit=%v data=%q", hit, data)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expected miss after Delete")
	}

	// Delete of a missing key is not an error
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}
}

func TestNewBackendSelection(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, Options{Backend: "memory", MaxEntries: 4})
	if err != nil {
		t.Fatalf("memory backend error: %v", err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("expected MemoryCache, got %T", c)
	}

	c, err = New(ctx, Options{Backend: "none"})
	if err != nil {
		t.Fatalf("none backend error: %v", err)
	}
	if _, ok := c.(*NullCache); !ok {
		t.Errorf("expected NullCache, got %T", c)
	}

	c, err = New(ctx, Options{Backend: "file", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("file backend error: %v", err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("expected FileCache, got %T", c)
	}

	if _, err := New(ctx, Options{Backend: "bogus"}); err == nil {
		t.Error("unknown backend should error")
	}
}

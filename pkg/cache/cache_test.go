package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/cellsolve/pkg/observability"
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
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cells"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Errorf("Get(missing) = hit %v, err %v, want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("solved"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "solved" {
		t.Errorf("Get(k) = %q, %v, %v, want solved, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key = %v, want nil", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry returned as hit")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry file not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v, want clean miss", hit, err)
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
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after Clear, want 0", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := LayoutKeyOpts{Backend: "ilp", DefaultFootprint: true, MinFootprint: 10, DomainMax: 10000}

	lk1 := k.LayoutKey("doc123", base)
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey = %s, want layout: prefix", lk1)
	}
	if lk1 != k.LayoutKey("doc123", base) {
		t.Error("LayoutKey should be deterministic")
	}

	changed := base
	changed.DomainMax = 500
	if lk1 == k.LayoutKey("doc123", changed) {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 == k.LayoutKey("doc456", base) {
		t.Error("Different documents should produce different keys")
	}

	rk1 := k.RenderKey("layout1", RenderKeyOpts{Format: "svg"})
	rk2 := k.RenderKey("layout1", RenderKeyOpts{Format: "dot"})
	if !strings.HasPrefix(rk1, "render:") {
		t.Errorf("RenderKey = %s, want render: prefix", rk1)
	}
	if rk1 == rk2 {
		t.Error("Different formats should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	k := NewScopedKeyer(inner, "team:a:")

	opts := LayoutKeyOpts{Backend: "ilp"}
	if got, want := k.LayoutKey("h", opts), "team:a:"+inner.LayoutKey("h", opts); got != want {
		t.Errorf("LayoutKey = %s, want %s", got, want)
	}
	ropts := RenderKeyOpts{Format: "svg"}
	if got, want := k.RenderKey("h", ropts), "team:a:"+inner.RenderKey("h", ropts); got != want {
		t.Errorf("RenderKey = %s, want %s", got, want)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	k := NewScopedKeyer(nil, "p:")
	if !strings.HasPrefix(k.LayoutKey("h", LayoutKeyOpts{}), "p:layout:") {
		t.Error("nil inner keyer should fall back to DefaultKeyer")
	}
}

func TestKeyType(t *testing.T) {
	k := NewDefaultKeyer()
	tests := []struct {
		key  string
		want string
	}{
		{k.LayoutKey("h", LayoutKeyOpts{}), "layout"},
		{NewScopedKeyer(k, "team:a:").RenderKey("h", RenderKeyOpts{}), "render"},
		{"plain", "unknown"},
	}
	for _, tt := range tests {
		if got := keyType(tt.key); got != tt.want {
			t.Errorf("keyType(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
	lastType           string
}

func (h *countingHooks) OnCacheHit(_ context.Context, kt string)  { h.hits++; h.lastType = kt }
func (h *countingHooks) OnCacheMiss(_ context.Context, kt string) { h.misses++; h.lastType = kt }
func (h *countingHooks) OnCacheSet(_ context.Context, kt string, _ int) {
	h.sets++
	h.lastType = kt
}

func TestInstrument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Instrument(fc)
	if Instrument(c) != c {
		t.Error("Instrument should not double-wrap")
	}

	key := NewDefaultKeyer().LayoutKey("doc", LayoutKeyOpts{})
	_, _, _ = c.Get(ctx, key)
	_ = c.Set(ctx, key, []byte("x"), time.Hour)
	_, _, _ = c.Get(ctx, key)

	if hooks.misses != 1 || hooks.sets != 1 || hooks.hits != 1 {
		t.Errorf("hooks = %d misses, %d sets, %d hits, want 1 each", hooks.misses, hooks.sets, hooks.hits)
	}
	if hooks.lastType != "layout" {
		t.Errorf("keyType = %v, want layout", hooks.lastType)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "http://localhost:6379", ""); err == nil {
		t.Error("NewRedisCache(http://...) should fail to parse")
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisCacheFromClient(client, "test:")
	defer c.Close()

	_, hit, err := c.Get(context.Background(), "k")
	if hit {
		t.Error("unreachable server reported a hit")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Get error = %v, want ErrNetwork", err)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if err := classify(context.Canceled); IsRetryable(err) {
		t.Error("context errors must not be retried")
	}
	if err := classify(errors.New("dial tcp: refused")); !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("classify(dial error) = %v, want retryable ErrNetwork", err)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	if IsRetryable(ErrNetwork) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()

	ctx := context.Background()
	errPermanent := errors.New("permanent")

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return errPermanent
	})
	if err != errPermanent {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

package cache

import (
	"context"
	"errors"
	"strings"
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

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "plan:abc")
	if err != nil || hit {
		t.Errorf("Get before Set = (hit=%v, err=%v), want miss", hit, err)
	}

	// Round-trip
	if err := c.Set(ctx, "plan:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "plan:abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit || string(data) != "payload" {
		t.Errorf("Get = (%q, %v), want payload hit", data, hit)
	}

	// Delete removes the entry; deleting again is fine
	if err := c.Delete(ctx, "plan:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "plan:abc"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "plan:abc"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// An already-expired entry reads as a miss
	if err := c.Set(ctx, "key", []byte("stale"), -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expired entry should be a miss")
	}

	// Zero TTL means no expiration
	if err := c.Set(ctx, "forever", []byte("keep"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero-TTL entry should not expire")
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

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// ItemsKey is prefixed and content-addressed
	ik := k.ItemsKey("abc123")
	if !strings.HasPrefix(ik, "items:") {
		t.Errorf("ItemsKey prefix wrong: %s", ik)
	}
	if ik != k.ItemsKey("abc123") {
		t.Error("ItemsKey should be deterministic")
	}

	// PlanKey includes the allocation options in the hash
	pk1 := k.PlanKey("abc123", PlanKeyOpts{Start: 3, End: 39, Strategy: "expand-up"})
	pk2 := k.PlanKey("abc123", PlanKeyOpts{Start: 3, End: 39, Strategy: "nearest"})
	if pk1 == pk2 {
		t.Error("Different PlanKeyOpts should produce different keys")
	}
	pk3 := k.PlanKey("def456", PlanKeyOpts{Start: 3, End: 39, Strategy: "expand-up"})
	if pk1 == pk3 {
		t.Error("Different item hashes should produce different plan keys")
	}

	// ArtifactKey includes the render options in the hash
	ak1 := k.ArtifactKey("abc123", ArtifactKeyOpts{Format: "drawio"})
	ak2 := k.ArtifactKey("abc123", ArtifactKeyOpts{Format: "json"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	ak3 := k.ArtifactKey("abc123", ArtifactKeyOpts{Format: "drawio", Detailed: true})
	if ak1 == ak3 {
		t.Error("Detailed flag should change the artifact key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "site-a:")

	ik := scoped.ItemsKey("abc123")
	if !strings.HasPrefix(ik, "site-a:items:") {
		t.Errorf("ScopedKeyer ItemsKey should be prefixed: %s", ik)
	}
	if ik[len("site-a:"):] != inner.ItemsKey("abc123") {
		t.Error("ScopedKeyer should wrap the inner key unchanged")
	}

	pk := scoped.PlanKey("abc123", PlanKeyOpts{})
	if !strings.HasPrefix(pk, "site-a:") {
		t.Errorf("ScopedKeyer PlanKey should be prefixed: %s", pk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	if got := scoped.ItemsKey("x"); got != "prefix:"+NewDefaultKeyer().ItemsKey("x") {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}

	base := errors.New("connection reset")
	wrapped := Retryable(base)
	if !IsRetryable(wrapped) {
		t.Error("wrapped error should be retryable")
	}
	if IsRetryable(base) {
		t.Error("plain error should not be retryable")
	}
	if !errors.Is(wrapped, base) {
		t.Error("Retryable should preserve the error chain")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Non-retryable errors fail fast
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return errors.New("fatal")
	})
	if err == nil || calls != 1 {
		t.Errorf("fail-fast: calls = %d, err = %v", calls, err)
	}

	// Success on a later attempt stops the retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retrying: calls = %d, err = %v", calls, err)
	}

	// Immediate success makes exactly one call
	calls = 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: calls = %d, err = %v", calls, err)
	}
}

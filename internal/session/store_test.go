package session

import (
	"context"
	"testing"

	"github.com/docqmentary/plog/internal/models"
)

// newTestCache creates an in-memory session cache, closed when the test
// completes.
func newTestCache(t *testing.T) *SQLiteCache {
	t.Helper()

	cache, err := OpenCache(":memory:")
	if err != nil {
		t.Fatalf("opening test cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestStore_RestoreEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestCache(t))

	if !store.Bootstrapping() {
		t.Error("store should report bootstrapping before Restore")
	}

	store.Restore(ctx)

	if store.Bootstrapping() {
		t.Error("store should not report bootstrapping after Restore")
	}
	if store.Current() != nil {
		t.Errorf("Current() = %+v, want nil for empty cache", store.Current())
	}
}

func TestStore_SetPersistsAcrossRestores(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	store := NewStore(cache)
	store.Restore(ctx)

	sess := &models.Session{
		UserID:      7,
		Email:       "doc@clinic.example",
		DisplayName: "Doc",
		APIKey:      "key-123",
	}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// A fresh store over the same cache sees the session.
	restored := NewStore(cache)
	restored.Restore(ctx)

	got := restored.Current()
	if got == nil {
		t.Fatal("Current() = nil after restore, want session")
	}
	if got.UserID != 7 || got.Email != "doc@clinic.example" || got.APIKey != "key-123" {
		t.Errorf("restored session = %+v, want original values", got)
	}
	if restored.APIKey() != "key-123" {
		t.Errorf("APIKey() = %q, want %q", restored.APIKey(), "key-123")
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestCache(t))
	store.Restore(ctx)

	if err := store.Set(ctx, &models.Session{UserID: 1, Email: "a@x", APIKey: "k1"}); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := store.Set(ctx, &models.Session{UserID: 2, Email: "b@x", APIKey: "k2"}); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got := store.Current()
	if got.UserID != 2 || got.APIKey != "k2" {
		t.Errorf("Current() = %+v, want fully replaced session", got)
	}
}

func TestStore_LogoutClearsPersistedCopy(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	store := NewStore(cache)
	store.Restore(ctx)
	if err := store.Set(ctx, &models.Session{UserID: 1, Email: "a@x", APIKey: "k"}); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if store.Current() != nil {
		t.Error("Current() should be nil after logout")
	}
	if store.APIKey() != "" {
		t.Error("APIKey() should be empty after logout")
	}

	restored := NewStore(cache)
	restored.Restore(ctx)
	if restored.Current() != nil {
		t.Error("logout should clear the persisted copy")
	}
}

func TestStore_CorruptCacheTreatedAsSignedOut(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	if err := cache.Write(ctx, []byte("{not json")); err != nil {
		t.Fatalf("seeding corrupt entry: %v", err)
	}

	store := NewStore(cache)
	store.Restore(ctx)

	if store.Bootstrapping() {
		t.Error("bootstrapping should clear even when the cache is corrupt")
	}
	if store.Current() != nil {
		t.Error("corrupt cache should restore as signed out, not error")
	}
}

func TestCache_ReadEmpty(t *testing.T) {
	cache := newTestCache(t)

	data, err := cache.Read(context.Background())
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if data != nil {
		t.Errorf("Read() = %q, want nil for empty slot", data)
	}
}

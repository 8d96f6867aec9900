package token

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := OpenFileStore(filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("OpenFileStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFileStore_WriteReadRemove(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Write(ctx, "session", "secretvalue", time.Hour); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	value, ok, err := store.Read(ctx, "session")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected token to be present")
	}
	if value != "secretvalue" {
		t.Errorf("Value mismatch: got %q", value)
	}

	if err := store.Remove(ctx, "session"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, err := store.Read(ctx, "session"); err != nil || ok {
		t.Errorf("Expected token to be absent after remove, ok=%v err=%v", ok, err)
	}
}

func TestFileStore_AbsentToken(t *testing.T) {
	store := openTestStore(t)

	value, ok, err := store.Read(context.Background(), "never-written")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if ok || value != "" {
		t.Error("Expected absence without error for unknown token")
	}
}

func TestFileStore_RemoveMissing(t *testing.T) {
	store := openTestStore(t)
	if err := store.Remove(context.Background(), "never-written"); err != nil {
		t.Errorf("Remove of missing token should not fail: %v", err)
	}
}

func TestFileStore_Expiry(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Write(ctx, "session", "secretvalue", time.Hour); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Still valid just before expiry
	store.now = func() time.Time { return now.Add(59 * time.Minute) }
	if _, ok, err := store.Read(ctx, "session"); err != nil || !ok {
		t.Fatalf("Expected token to be valid before expiry, ok=%v err=%v", ok, err)
	}

	// Expired afterwards, and lazily deleted
	store.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, ok, err := store.Read(ctx, "session"); err != nil || ok {
		t.Fatalf("Expected token to be absent after expiry, ok=%v err=%v", ok, err)
	}

	store.now = func() time.Time { return now }
	if _, ok, _ := store.Read(ctx, "session"); ok {
		t.Error("Expected expired token to have been deleted")
	}
}

func TestFileStore_DelimiterRejectedBeforePersist(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Write(ctx, "session", "bad;value", time.Hour)
	if !errors.Is(err, ErrReservedDelimiter) {
		t.Fatalf("Expected ErrReservedDelimiter, got %v", err)
	}

	if _, ok, _ := store.Read(ctx, "session"); ok {
		t.Error("Rejected value must not have been persisted")
	}
}

func TestFileStore_DefaultTTL(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Write(ctx, "session", "secretvalue", 0); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	store.now = func() time.Time { return now.Add(999 * 24 * time.Hour) }
	if _, ok, _ := store.Read(ctx, "session"); !ok {
		t.Error("Expected token written with zero TTL to use the long default")
	}
}

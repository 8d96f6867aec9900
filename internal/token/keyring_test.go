package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

func TestKeyringStore_WriteReadRemove(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore()
	ctx := context.Background()

	if err := store.Write(ctx, "session", "secretvalue", time.Hour); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	value, ok, err := store.Read(ctx, "session")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !ok || value != "secretvalue" {
		t.Errorf("Expected secretvalue, got ok=%v value=%q", ok, value)
	}

	if err := store.Remove(ctx, "session"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, err := store.Read(ctx, "session"); err != nil || ok {
		t.Errorf("Expected absence after remove, ok=%v err=%v", ok, err)
	}

	if err := store.Remove(ctx, "session"); err != nil {
		t.Errorf("Remove of missing token should not fail: %v", err)
	}
}

func TestKeyringStore_Expiry(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore()
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Write(ctx, "session", "secretvalue", time.Hour); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	store.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, ok, err := store.Read(ctx, "session"); err != nil || ok {
		t.Errorf("Expected absence after expiry, ok=%v err=%v", ok, err)
	}
}

func TestKeyringStore_DelimiterRejected(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore()

	err := store.Write(context.Background(), "session", "bad=value", time.Hour)
	if !errors.Is(err, ErrReservedDelimiter) {
		t.Fatalf("Expected ErrReservedDelimiter, got %v", err)
	}
}

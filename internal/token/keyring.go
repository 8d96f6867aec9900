package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
)

const serviceName = "profilevault"

// KeyringStore keeps tokens in the OS keyring. The same record encoding
// as the file store is used so the expiry survives the keyring round-trip.
type KeyringStore struct {
	now func() time.Time
}

// NewKeyringStore creates a keyring-backed token store
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{now: time.Now}
}

// Read returns the token value if it exists and has not expired
func (s *KeyringStore) Read(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	encoded, err := keyring.Get(serviceName, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read token from keyring: %w", err)
	}

	rec, err := decodeRecord(encoded)
	if err != nil {
		return "", false, err
	}
	if rec.expired(s.now()) {
		if err := s.Remove(ctx, name); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	return rec.value, true, nil
}

// Write stores the token value with the given time-to-live
func (s *KeyringStore) Write(ctx context.Context, name, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	encoded, err := encodeRecord(value, s.now().Add(ttl))
	if err != nil {
		return err
	}

	if err := keyring.Set(serviceName, name, encoded); err != nil {
		return fmt.Errorf("failed to write token to keyring: %w", err)
	}
	return nil
}

// Remove deletes the token from the keyring. A missing token is not an
// error.
func (s *KeyringStore) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := keyring.Delete(serviceName, name)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to remove token from keyring: %w", err)
	}
	return nil
}

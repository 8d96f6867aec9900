package token

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var tokensBucket = []byte("tokens")

// FileStore keeps tokens in a bbolt database on disk.
type FileStore struct {
	db  *bolt.DB
	now func() time.Time
}

// OpenFileStore opens or creates a token database at the given path
func OpenFileStore(path string) (*FileStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tokensBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token store: %w", err)
	}

	return &FileStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database
func (s *FileStore) Close() error {
	return s.db.Close()
}

// Read returns the token value if it exists and has not expired.
// An expired record is deleted on the way out.
func (s *FileStore) Read(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var encoded string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(tokensBucket).Get([]byte(name))
		if data == nil {
			return nil
		}
		// Copy out of the transaction
		encoded = string(data)
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}
	if !found {
		return "", false, nil
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
func (s *FileStore) Write(ctx context.Context, name, value string, ttl time.Duration) error {
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

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tokensBucket).Put([]byte(name), []byte(encoded))
	})
	if err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Remove deletes the token. Removing a token that does not exist is not
// an error.
func (s *FileStore) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tokensBucket).Delete([]byte(name))
	})
	if err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

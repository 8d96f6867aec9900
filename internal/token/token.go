package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTTL is how long a persisted token stays valid without a refresh.
const DefaultTTL = 1000 * 24 * time.Hour

const expiresMarker = ";expires="

var (
	// ErrReservedDelimiter is returned when a token value contains a
	// character used by the record encoding.
	ErrReservedDelimiter = errors.New("token value contains reserved delimiter")

	// ErrMalformedRecord is returned when a stored record cannot be parsed.
	ErrMalformedRecord = errors.New("malformed token record")
)

// Store is durable storage for named tokens with an expiration.
// Read reports absence (expired or never written) without an error.
type Store interface {
	Read(ctx context.Context, name string) (value string, ok bool, err error)
	Write(ctx context.Context, name, value string, ttl time.Duration) error
	Remove(ctx context.Context, name string) error
}

type record struct {
	value   string
	expires time.Time
}

func (r record) expired(now time.Time) bool {
	return !now.Before(r.expires)
}

// encodeRecord validates the value and serializes it with its expiry.
// Validation happens before anything touches the backend, so a bad value
// never gets persisted.
func encodeRecord(value string, expires time.Time) (string, error) {
	if strings.ContainsAny(value, ";=") {
		return "", ErrReservedDelimiter
	}
	return value + expiresMarker + expires.UTC().Format(time.RFC3339), nil
}

func decodeRecord(encoded string) (record, error) {
	idx := strings.Index(encoded, expiresMarker)
	if idx < 0 {
		return record{}, ErrMalformedRecord
	}
	expires, err := time.Parse(time.RFC3339, encoded[idx+len(expiresMarker):])
	if err != nil {
		return record{}, fmt.Errorf("%w: bad expiry: %v", ErrMalformedRecord, err)
	}
	return record{value: encoded[:idx], expires: expires}, nil
}

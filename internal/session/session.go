// Package session owns the authenticated session: the transient in-memory
// pairing of a derived secret with its matched profile, and the persisted
// token that lets the pairing be re-established after a restart.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/illarion/profilevault/internal/profile"
	"github.com/illarion/profilevault/internal/token"
)

// DefaultTokenName is the key the persisted token is stored under.
// Kept for compatibility with stores written by earlier deployments.
const DefaultTokenName = "BENCRYPTIONTOKEN"

// Session is the transient state of an authenticated user: the derived
// secret (cipher key material) and the encrypted profile it matched.
// It lives only as long as the process and is never persisted directly.
type Session struct {
	Secret  string
	Profile *profile.Encrypted
}

// CredentialStore owns the session lifecycle: establishing it after an
// interactive login, restoring it from the persisted token, and destroying
// it on logout.
type CredentialStore struct {
	store     token.Store
	tokenName string
	ttl       time.Duration

	mu      sync.Mutex
	session *Session
}

// New creates a credential store over the given token storage. An empty
// tokenName or non-positive ttl selects the defaults.
func New(store token.Store, tokenName string, ttl time.Duration) *CredentialStore {
	if tokenName == "" {
		tokenName = DefaultTokenName
	}
	if ttl <= 0 {
		ttl = token.DefaultTTL
	}
	return &CredentialStore{
		store:     store,
		tokenName: tokenName,
		ttl:       ttl,
	}
}

// Establish persists the secret as the session token and creates the
// in-memory session. The secret is the hashed password, never the raw one.
func (c *CredentialStore) Establish(ctx context.Context, secret string, prof *profile.Encrypted) error {
	if err := c.store.Write(ctx, c.tokenName, secret, c.ttl); err != nil {
		return err
	}

	c.mu.Lock()
	c.session = &Session{Secret: secret, Profile: prof}
	c.mu.Unlock()
	return nil
}

// Restore reads the persisted token, treats its value as a candidate
// authentication secret and runs it through lookup. On a match the token's
// expiration is refreshed and a session is established. Absence of a token
// or of a matching profile is not an error: Restore returns (nil, nil).
func (c *CredentialStore) Restore(ctx context.Context, lookup func(secret string) (*profile.Encrypted, bool)) (*Session, error) {
	secret, ok, err := c.store.Read(ctx, c.tokenName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	prof, ok := lookup(secret)
	if !ok {
		return nil, nil
	}

	// Sliding expiration: a successful restore pushes the expiry out.
	if err := c.store.Write(ctx, c.tokenName, secret, c.ttl); err != nil {
		return nil, err
	}

	sess := &Session{Secret: secret, Profile: prof}
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
	return sess, nil
}

// Destroy deletes the persisted token and clears the in-memory session.
// Safe to call when no session exists.
func (c *CredentialStore) Destroy(ctx context.Context) error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	return c.store.Remove(ctx, c.tokenName)
}

// Clear drops the in-memory session without touching the persisted token.
func (c *CredentialStore) Clear() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

// Session returns the current in-memory session, or nil when there is none.
func (c *CredentialStore) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

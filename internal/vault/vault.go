// Package vault orchestrates the authentication lifecycle over an enrolled
// profile collection: restore from a persisted token on open, interactive
// password submission, the decrypted-profile accessor and logout.
package vault

import (
	"context"
	"errors"
	"sync"

	"github.com/illarion/profilevault/internal/crypto"
	"github.com/illarion/profilevault/internal/profile"
	"github.com/illarion/profilevault/internal/session"
)

var (
	// ErrSessionMissing means the decrypted profile was requested before
	// authentication. That is a caller bug, not a recoverable condition.
	ErrSessionMissing = errors.New("no authenticated session")

	// ErrAuthInFlight means a password submission was rejected because
	// another one is still running.
	ErrAuthInFlight = errors.New("authentication already in flight")

	// ErrAlreadyOpened means Open was called twice on the same vault.
	ErrAlreadyOpened = errors.New("vault already opened")
)

// State is the vault's position in its authentication lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Vault gates a profile collection behind a password. A single vault holds
// at most one session; all state transitions are serialized.
type Vault struct {
	profiles profile.Collection
	codec    *profile.Codec
	creds    *session.CredentialStore

	// authMu is the "one authentication in flight" gate. It is the only
	// lock held across the KDF.
	authMu sync.Mutex

	mu        sync.Mutex
	state     State
	decrypted *profile.Decrypted
}

// New creates a vault over the enrolled profiles. Call Open to run the
// token-restore path before prompting for a password.
func New(profiles profile.Collection, codec *profile.Codec, creds *session.CredentialStore) *Vault {
	return &Vault{
		profiles: profiles,
		codec:    codec,
		creds:    creds,
		state:    StateUninitialized,
	}
}

// lookupBySecret finds the profile enrolled under the given secret by
// comparing fingerprints. First match wins.
func (v *Vault) lookupBySecret(secret string) (*profile.Encrypted, bool) {
	fingerprint, err := crypto.DeriveFingerprint(secret)
	if err != nil {
		return nil, false
	}
	return v.profiles.Lookup(fingerprint)
}

// Open runs the restore path exactly once: if a valid persisted token
// matches an enrolled profile, the vault comes up authenticated with the
// profile already decrypted; otherwise it comes up unauthenticated and
// the caller should present a login prompt.
func (v *Vault) Open(ctx context.Context) error {
	v.mu.Lock()
	if v.state != StateUninitialized {
		v.mu.Unlock()
		return ErrAlreadyOpened
	}
	v.state = StateRestoring
	v.mu.Unlock()

	sess, err := v.creds.Restore(ctx, v.lookupBySecret)
	if err != nil {
		v.setState(StateUnauthenticated, nil)
		return err
	}
	if sess == nil {
		v.setState(StateUnauthenticated, nil)
		return nil
	}

	decrypted, err := v.codec.Decrypt(ctx, sess.Secret, sess.Profile)
	if err != nil {
		// A token that matched a fingerprint but cannot decrypt the
		// profile points at tampering or corruption. Drop it.
		if isDecryptionFailure(err) {
			if destroyErr := v.creds.Destroy(ctx); destroyErr != nil {
				v.setState(StateUnauthenticated, nil)
				return destroyErr
			}
			v.setState(StateUnauthenticated, nil)
			return nil
		}
		// Restore already populated the in-memory session; without a
		// decrypted profile it must not outlive this attempt.
		v.creds.Clear()
		v.setState(StateUnauthenticated, nil)
		return err
	}

	v.setState(StateAuthenticated, decrypted)
	return nil
}

// SubmitPassword attempts an interactive login. A wrong password returns
// (false, nil) with no state change; only subsystem failures surface as
// errors. A second call while one is pending is rejected with
// ErrAuthInFlight.
func (v *Vault) SubmitPassword(ctx context.Context, rawPassword string) (bool, error) {
	if !v.authMu.TryLock() {
		return false, ErrAuthInFlight
	}
	defer v.authMu.Unlock()

	secret, err := crypto.DeriveSecret(rawPassword)
	if err != nil {
		return false, err
	}

	prof, ok := v.lookupBySecret(secret)
	if !ok {
		return false, nil
	}

	decrypted, err := v.codec.Decrypt(ctx, secret, prof)
	if err != nil {
		// A fingerprint match that fails to decrypt means tampering or
		// corruption. Treated exactly like a miss: no partial exposure.
		if isDecryptionFailure(err) {
			return false, nil
		}
		return false, err
	}

	if err := v.creds.Establish(ctx, secret, prof); err != nil {
		return false, err
	}

	v.setState(StateAuthenticated, decrypted)
	return true, nil
}

// Profile returns the decrypted profile of the authenticated session.
func (v *Vault) Profile() (*profile.Decrypted, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateAuthenticated || v.decrypted == nil {
		return nil, ErrSessionMissing
	}
	return v.decrypted, nil
}

// Logout destroys the persisted credentials and discards the decrypted
// profile and session key. Safe to call when not authenticated.
// A logout waits for any in-flight password submission so the two cannot
// interleave.
func (v *Vault) Logout(ctx context.Context) error {
	v.authMu.Lock()
	defer v.authMu.Unlock()

	err := v.creds.Destroy(ctx)
	v.setState(StateUnauthenticated, nil)
	return err
}

// State reports the current lifecycle state.
func (v *Vault) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *Vault) setState(state State, decrypted *profile.Decrypted) {
	v.mu.Lock()
	v.state = state
	v.decrypted = decrypted
	v.mu.Unlock()
}

func isDecryptionFailure(err error) bool {
	return errors.Is(err, crypto.ErrAuthFailed) || errors.Is(err, crypto.ErrInvalidCiphertext)
}

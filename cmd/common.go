package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/profilevault/internal/crypto"
	"github.com/illarion/profilevault/internal/profile"
	"github.com/illarion/profilevault/internal/session"
	"github.com/illarion/profilevault/internal/storage"
	"github.com/illarion/profilevault/internal/token"
	"github.com/illarion/profilevault/internal/vault"
)

// DefaultBundlePath is where enrolled profiles live unless overridden
const DefaultBundlePath = ".profilevault"

// ErrNotEnrolled is reported when the bundle exists but holds no profiles
var ErrNotEnrolled = errors.New("no profiles enrolled")

// GetPassword retrieves a password from the environment or prompts the user.
// The caller is responsible for calling crypto.ClearBytes on the result.
func GetPassword(prompt string) ([]byte, error) {
	if password := GetPasswordFromEnv(); password != nil {
		return password, nil
	}

	password, err := ReadPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// GetPasswordForEnroll checks the environment first, then prompts with
// confirmation since a typo here locks the profile forever.
func GetPasswordForEnroll() ([]byte, error) {
	if password := GetPasswordFromEnv(); password != nil {
		return password, nil
	}
	return ReadPasswordConfirm()
}

// newTokenStore selects the persisted-token backend. The file store lives
// next to the bundle; close is a no-op for the keyring.
func newTokenStore(bundlePath string, useKeyring bool) (token.Store, func(), error) {
	if useKeyring {
		return token.NewKeyringStore(), func() {}, nil
	}
	store, err := token.OpenFileStore(bundlePath + ".session")
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

// openVault loads the enrolled collection and assembles the vault on top
// of the chosen token backend.
func openVault(bundlePath string, useKeyring bool) (*vault.Vault, func(), error) {
	bundle, err := storage.Open(bundlePath)
	if err != nil {
		return nil, nil, err
	}

	collection, err := bundle.LoadCollection()
	if err != nil {
		bundle.Close()
		return nil, nil, err
	}
	if len(collection) == 0 {
		bundle.Close()
		return nil, nil, ErrNotEnrolled
	}

	iterations, err := bundle.Iterations()
	if err != nil {
		bundle.Close()
		return nil, nil, err
	}

	store, closeStore, err := newTokenStore(bundlePath, useKeyring)
	if err != nil {
		bundle.Close()
		return nil, nil, err
	}

	codec := profile.NewCodec(crypto.NewKDFWithIterations(iterations))
	creds := session.New(store, "", 0)
	v := vault.New(collection, codec, creds)

	cleanup := func() {
		closeStore()
		bundle.Close()
	}
	return v, cleanup, nil
}

// HandleError prints a friendly message for known errors and exits
func HandleError(err error) {
	switch {
	case errors.Is(err, ErrNotEnrolled):
		fmt.Fprintf(os.Stderr, "Error: no profiles enrolled\n")
		fmt.Fprintf(os.Stderr, "Run 'profilevault enroll <fields.json>' first\n")
	case errors.Is(err, vault.ErrSessionMissing):
		fmt.Fprintf(os.Stderr, "Error: not authenticated\n")
	case errors.Is(err, token.ErrReservedDelimiter):
		fmt.Fprintf(os.Stderr, "Error: token value contains reserved characters\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

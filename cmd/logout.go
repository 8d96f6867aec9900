package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/profilevault/internal/session"
)

// Logout removes the persisted session token. Safe to run when no session
// exists.
func Logout(ctx context.Context, bundlePath string, useKeyring bool) {
	store, closeStore, err := newTokenStore(bundlePath, useKeyring)
	if err != nil {
		HandleError(err)
	}
	defer closeStore()

	creds := session.New(store, "", 0)
	if err := creds.Destroy(ctx); err != nil {
		HandleError(err)
	}

	fmt.Println("logged out")
}

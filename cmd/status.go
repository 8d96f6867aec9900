package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/profilevault/internal/session"
	"github.com/illarion/profilevault/internal/storage"
)

// Status prints bundle information and whether a persisted session exists
func Status(ctx context.Context, bundlePath string, useKeyring bool) {
	bundle, err := storage.Open(bundlePath)
	if err != nil {
		HandleError(err)
	}
	defer bundle.Close()

	initialized, err := bundle.IsInitialized()
	if err != nil {
		HandleError(err)
	}
	if !initialized {
		fmt.Println("Bundle: not initialized")
		return
	}

	collection, err := bundle.LoadCollection()
	if err != nil {
		HandleError(err)
	}
	iterations, err := bundle.Iterations()
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Bundle: %s\n", bundlePath)
	fmt.Printf("Profiles: %d\n", len(collection))
	fmt.Printf("KDF iterations: %d\n", iterations)

	if modified, err := bundle.Modified(); err == nil {
		fmt.Printf("Modified: %s\n", modified.Format("2006-01-02 15:04:05"))
	}

	store, closeStore, err := newTokenStore(bundlePath, useKeyring)
	if err != nil {
		HandleError(err)
	}
	defer closeStore()

	_, present, err := store.Read(ctx, session.DefaultTokenName)
	if err != nil {
		HandleError(err)
	}
	if present {
		fmt.Println("Session: persisted")
	} else {
		fmt.Println("Session: none")
	}
}

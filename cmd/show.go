package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/illarion/profilevault/internal/vault"
)

// Show unlocks the matching profile and prints its decrypted fields.
// A valid persisted token skips the prompt entirely.
func Show(ctx context.Context, bundlePath string, useKeyring bool) {
	v, cleanup, err := openVault(bundlePath, useKeyring)
	if err != nil {
		HandleError(err)
	}
	defer cleanup()

	if err := v.Open(ctx); err != nil {
		HandleError(err)
	}

	if v.State() == vault.StateAuthenticated {
		fmt.Println("session restored")
	} else {
		if err := PromptLogin(ctx, v.SubmitPassword); err != nil {
			HandleError(err)
		}
	}

	prof, err := v.Profile()
	if err != nil {
		HandleError(err)
	}

	names := make([]string, 0, len(prof.Fields))
	for name := range prof.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s = %s\n", name, renderValue(prof.Fields[name]))
	}
}

// renderValue prints strings bare and everything else as JSON
func renderValue(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}

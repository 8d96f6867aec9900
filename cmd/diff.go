package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/illarion/profilevault/internal/vault"
)

// Diff unlocks the matching profile and compares its decrypted fields
// against a candidate plaintext fields file, for review before
// re-enrolling.
func Diff(ctx context.Context, bundlePath, fieldsPath string, useKeyring bool) {
	data, err := os.ReadFile(fieldsPath)
	if err != nil {
		HandleError(fmt.Errorf("failed to read fields file: %w", err))
	}

	var candidate map[string]any
	if err := json.Unmarshal(data, &candidate); err != nil {
		HandleError(fmt.Errorf("failed to parse fields file: %w", err))
	}

	v, cleanup, err := openVault(bundlePath, useKeyring)
	if err != nil {
		HandleError(err)
	}
	defer cleanup()

	if err := v.Open(ctx); err != nil {
		HandleError(err)
	}
	if v.State() != vault.StateAuthenticated {
		if err := PromptLogin(ctx, v.SubmitPassword); err != nil {
			HandleError(err)
		}
	}

	prof, err := v.Profile()
	if err != nil {
		HandleError(err)
	}

	names := fieldUnion(prof.Fields, candidate)
	dmp := diffmatchpatch.New()
	changed := 0

	for _, name := range names {
		enrolled, inEnrolled := prof.Fields[name]
		proposed, inCandidate := candidate[name]

		switch {
		case !inEnrolled:
			fmt.Printf("+ %s = %s\n", name, renderValue(proposed))
			changed++
		case !inCandidate:
			fmt.Printf("- %s = %s\n", name, renderValue(enrolled))
			changed++
		default:
			before, after := renderValue(enrolled), renderValue(proposed)
			if before == after {
				continue
			}
			diffs := dmp.DiffMain(before, after, false)
			fmt.Printf("~ %s: %s\n", name, dmp.DiffPrettyText(dmp.DiffCleanupSemantic(diffs)))
			changed++
		}
	}

	if changed == 0 {
		fmt.Println("no changes")
	}
}

func fieldUnion(a map[string]any, b map[string]any) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for name := range a {
		seen[name] = true
	}
	for name := range b {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/illarion/profilevault/internal/crypto"
	"github.com/illarion/profilevault/internal/profile"
	"github.com/illarion/profilevault/internal/storage"
)

// Enroll encrypts a plaintext fields file under a new password and adds
// the resulting profile to the bundle. Re-enrolling under an existing
// password replaces that profile.
func Enroll(ctx context.Context, bundlePath, fieldsPath string, iterations int) {
	data, err := os.ReadFile(fieldsPath)
	if err != nil {
		HandleError(fmt.Errorf("failed to read fields file: %w", err))
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		HandleError(fmt.Errorf("failed to parse fields file: %w", err))
	}
	if len(fields) == 0 {
		HandleError(fmt.Errorf("fields file %s contains no fields", fieldsPath))
	}

	bundle, err := storage.Open(bundlePath)
	if err != nil {
		HandleError(err)
	}
	defer bundle.Close()

	if err := bundle.Initialize(iterations); err != nil {
		HandleError(err)
	}

	// An existing bundle keeps its original KDF parameters
	iterations, err = bundle.Iterations()
	if err != nil {
		HandleError(err)
	}

	password, err := GetPasswordForEnroll()
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	secret, err := crypto.DeriveSecret(string(password))
	if err != nil {
		HandleError(err)
	}

	codec := profile.NewCodec(crypto.NewKDFWithIterations(iterations))
	encrypted, err := codec.Encrypt(ctx, secret, fields)
	if err != nil {
		HandleError(err)
	}

	if err := bundle.SaveProfile(encrypted); err != nil {
		HandleError(err)
	}

	fmt.Printf("enrolled profile %s... (%d fields)\n", encrypted.Fingerprint[:12], len(fields))
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/illarion/profilevault/internal/crypto"
)

const maxLoginAttempts = 3

// ErrLoginAborted is returned when the user runs out of attempts
var ErrLoginAborted = errors.New("too many failed login attempts")

// PromptLogin is the terminal login screen. It renders a password prompt
// and relays the input to submit until it reports success or attempts run
// out. It knows nothing about the vault beyond the callback.
func PromptLogin(ctx context.Context, submit func(ctx context.Context, rawPassword string) (bool, error)) error {
	for attempt := 0; attempt < maxLoginAttempts; attempt++ {
		password, err := GetPassword("Enter password: ")
		if err != nil {
			return err
		}

		ok, err := submit(ctx, string(password))
		crypto.ClearBytes(password)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		fmt.Fprintf(os.Stderr, "wrong password\n")

		// The environment password is not going to change between attempts
		if GetPasswordFromEnv() != nil {
			break
		}
	}
	return ErrLoginAborted
}

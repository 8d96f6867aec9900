package profile

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/illarion/profilevault/internal/crypto"
)

// Codec encrypts and decrypts whole profiles field by field using keys
// derived from an authentication secret.
type Codec struct {
	kdf *crypto.KDF
}

// NewCodec creates a codec bound to the given key derivation parameters
func NewCodec(kdf *crypto.KDF) *Codec {
	return &Codec{kdf: kdf}
}

// Encrypt encrypts every field independently and attaches the fingerprint
// derived from the secret. The input map is not modified.
func (c *Codec) Encrypt(ctx context.Context, secret string, fields map[string]any) (*Encrypted, error) {
	fingerprint, err := crypto.DeriveFingerprint(secret)
	if err != nil {
		return nil, err
	}

	key := c.kdf.DeriveKey([]byte(secret))
	enc := crypto.NewEncryptor(key)
	defer enc.Destroy()

	out := make(map[string]string, len(fields))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for name, value := range fields {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ciphertext, err := enc.EncryptField(value)
			if err != nil {
				return fmt.Errorf("failed to encrypt field %q: %w", name, err)
			}
			mu.Lock()
			out[name] = ciphertext
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Encrypted{Fingerprint: fingerprint, Fields: out}, nil
}

// Decrypt decrypts every field independently, preserving the fingerprint.
// Any single field failure fails the whole operation; callers never see a
// partially decrypted profile. Decrypt does not itself verify that the
// secret matches the profile's fingerprint; with a wrong secret the
// authenticated cipher fails with crypto.ErrAuthFailed on the first field.
func (c *Codec) Decrypt(ctx context.Context, secret string, p *Encrypted) (*Decrypted, error) {
	key := c.kdf.DeriveKey([]byte(secret))
	enc := crypto.NewEncryptor(key)
	defer enc.Destroy()

	out := make(map[string]any, len(p.Fields))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for name, ciphertext := range p.Fields {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var value any
			if err := enc.DecryptField(ciphertext, &value); err != nil {
				return fmt.Errorf("failed to decrypt field %q: %w", name, err)
			}
			mu.Lock()
			out[name] = value
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Decrypted{Fingerprint: p.Fingerprint, Fields: out}, nil
}

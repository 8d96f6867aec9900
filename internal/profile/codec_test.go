package profile

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/illarion/profilevault/internal/crypto"
)

func testCodec() *Codec {
	return NewCodec(&crypto.KDF{Salt: []byte(crypto.DefaultSalt), Iterations: 16})
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := testCodec()
	ctx := context.Background()

	fields := map[string]any{
		"email":    "user@example.com",
		"apiKey":   "k-123",
		"limit":    float64(10),
		"enabled":  true,
		"metadata": map[string]any{"region": "eu"},
	}

	secret, err := crypto.DeriveSecret("p1")
	if err != nil {
		t.Fatalf("DeriveSecret failed: %v", err)
	}

	encrypted, err := codec.Encrypt(ctx, secret, fields)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if len(encrypted.Fields) != len(fields) {
		t.Fatalf("Expected %d encrypted fields, got %d", len(fields), len(encrypted.Fields))
	}
	for name, ciphertext := range encrypted.Fields {
		if plain := renderPlain(fields[name]); ciphertext == plain {
			t.Errorf("Field %q stored in plaintext", name)
		}
	}

	decrypted, err := codec.Decrypt(ctx, secret, encrypted)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !reflect.DeepEqual(decrypted.Fields, fields) {
		t.Errorf("Round trip mismatch: got %v, want %v", decrypted.Fields, fields)
	}
	if decrypted.Fingerprint != encrypted.Fingerprint {
		t.Error("Fingerprint not preserved through decryption")
	}
}

func renderPlain(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func TestCodec_FingerprintChain(t *testing.T) {
	codec := testCodec()

	secret, err := crypto.DeriveSecret("p1")
	if err != nil {
		t.Fatalf("DeriveSecret failed: %v", err)
	}
	encrypted, err := codec.Encrypt(context.Background(), secret, map[string]any{"a": "b"})
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	want, err := crypto.DeriveFingerprint(secret)
	if err != nil {
		t.Fatalf("DeriveFingerprint failed: %v", err)
	}
	if encrypted.Fingerprint != want {
		t.Errorf("Fingerprint mismatch: got %s, want %s", encrypted.Fingerprint, want)
	}
}

func TestCodec_WrongSecretFailsWhole(t *testing.T) {
	codec := testCodec()
	ctx := context.Background()

	secret, _ := crypto.DeriveSecret("p1")
	wrong, _ := crypto.DeriveSecret("p2")

	encrypted, err := codec.Encrypt(ctx, secret, map[string]any{"a": "1", "b": "2", "c": "3"})
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	decrypted, err := codec.Decrypt(ctx, wrong, encrypted)
	if !errors.Is(err, crypto.ErrAuthFailed) {
		t.Errorf("Expected ErrAuthFailed with wrong secret, got %v", err)
	}
	if decrypted != nil {
		t.Error("Expected no partial profile on failure")
	}
}

func TestCodec_InputNotMutated(t *testing.T) {
	codec := testCodec()
	ctx := context.Background()

	fields := map[string]any{"a": "original"}
	secret, _ := crypto.DeriveSecret("p1")

	encrypted, err := codec.Encrypt(ctx, secret, fields)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if fields["a"] != "original" {
		t.Error("Encrypt mutated its input")
	}

	before := encrypted.Fields["a"]
	if _, err := codec.Decrypt(ctx, secret, encrypted); err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if encrypted.Fields["a"] != before {
		t.Error("Decrypt mutated the encrypted profile")
	}
}

func TestCodec_ProfileIsolation(t *testing.T) {
	codec := testCodec()
	ctx := context.Background()

	secret1, _ := crypto.DeriveSecret("p1")
	secret2, _ := crypto.DeriveSecret("p2")

	profile1, err := codec.Encrypt(ctx, secret1, map[string]any{"owner": "alice"})
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	profile2, err := codec.Encrypt(ctx, secret2, map[string]any{"owner": "bob"})
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if profile1.Fingerprint == profile2.Fingerprint {
		t.Error("Different passwords produced identical fingerprints")
	}

	if _, err := codec.Decrypt(ctx, secret1, profile2); err == nil {
		t.Error("p1's secret decrypted p2's profile")
	}
	if _, err := codec.Decrypt(ctx, secret2, profile1); err == nil {
		t.Error("p2's secret decrypted p1's profile")
	}
}

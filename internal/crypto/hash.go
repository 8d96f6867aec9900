package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash computes a deterministic SHA-256 digest over the canonical JSON
// form of value, returned as lowercase hex. The same value always produces
// the same digest, which is what makes it usable both as a stored
// fingerprint and as reproducible key material.
func Hash(value any) (string, error) {
	canonical, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to serialize value for hashing: %w", err)
	}
	digest := sha256.Sum256(canonical)
	return hex.EncodeToString(digest[:]), nil
}

// DeriveSecret turns a raw password into the authentication secret.
// The secret is what gets used as cipher key material and as the value of
// the persisted token; the raw password itself is never stored anywhere.
func DeriveSecret(rawPassword string) (string, error) {
	return Hash(rawPassword)
}

// DeriveFingerprint turns an authentication secret into the fingerprint
// stored on an enrolled profile. Together with DeriveSecret this is the
// full chain: fingerprint = Hash(Hash(rawPassword)).
func DeriveFingerprint(secret string) (string, error) {
	return Hash(secret)
}

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	KeySize      = 32    // AES-256 key size
	NonceSize    = 12    // GCM nonce size
	TagSize      = 16    // GCM authentication tag size
	DefaultIters = 10000 // Default PBKDF2 iterations

	// DefaultSalt is the fixed KDF salt baked into the enrollment format.
	// Enrollment and login must agree on it or no profile will ever decrypt.
	DefaultSalt = "1*b99a-84ffhysim294&w22"
)

var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrAuthFailed        = errors.New("authentication failed")
)

// KDF derives AES keys from authentication secrets
type KDF struct {
	Salt       []byte
	Iterations int
}

// NewKDF creates a KDF with the fixed default salt and iteration count
func NewKDF() *KDF {
	return &KDF{
		Salt:       []byte(DefaultSalt),
		Iterations: DefaultIters,
	}
}

// NewKDFWithIterations creates a KDF with a custom iteration count,
// falling back to the default when iterations is not positive
func NewKDFWithIterations(iterations int) *KDF {
	if iterations <= 0 {
		iterations = DefaultIters
	}
	return &KDF{
		Salt:       []byte(DefaultSalt),
		Iterations: iterations,
	}
}

// DeriveKey derives an encryption key from an authentication secret
func (k *KDF) DeriveKey(secret []byte) []byte {
	return pbkdf2.Key(secret, k.Salt, k.Iterations, KeySize, sha256.New)
}

// Encryptor provides authenticated per-field encryption
type Encryptor struct {
	key []byte
}

// NewEncryptor creates a new encryptor with the given key
func NewEncryptor(key []byte) *Encryptor {
	return &Encryptor{
		key: key,
	}
}

// EncryptField serializes value to JSON and encrypts it with AES-256-GCM.
// A fresh random nonce is drawn for every call and prepended to the
// ciphertext; the result is base64 so it can live in any text field.
func (e *Encryptor) EncryptField(value any) (string, error) {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to serialize field: %w", err)
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	ClearBytes(plaintext)

	result := make([]byte, NonceSize+len(sealed))
	copy(result, nonce)
	copy(result[NonceSize:], sealed)

	return base64.StdEncoding.EncodeToString(result), nil
}

// DecryptField decrypts a ciphertext produced by EncryptField and
// unmarshals the plaintext JSON into v. A wrong key or tampered
// ciphertext fails with ErrAuthFailed, never with silent garbage.
func (e *Encryptor) DecryptField(ciphertext string, v any) error {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return ErrInvalidCiphertext
	}
	if len(raw) < NonceSize+TagSize {
		return ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := raw[:NonceSize]
	sealed := raw[NonceSize:]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return ErrAuthFailed
	}
	defer ClearBytes(plaintext)

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("failed to decode decrypted field: %w", err)
	}
	return nil
}

// Destroy clears the encryptor's key from memory
func (e *Encryptor) Destroy() {
	ClearBytes(e.key)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Package crypto provides the cryptographic primitives for profilevault.
//
// Field encryption uses AES-256-GCM with:
//   - 32-byte key derived from the authentication secret via PBKDF2
//   - 12-byte random nonce per encryption, prepended to the ciphertext
//   - Authenticated encryption, so tampering and wrong keys are detected
//
// Key derivation uses PBKDF2-HMAC-SHA256 with a fixed salt and 10,000
// iterations by default. The iteration count is tunable; the salt is part
// of the enrollment format and must match between enrollment and login.
//
// The password chain is two explicit hashes:
//
//	secret      = Hash(rawPassword)   // cipher key material
//	fingerprint = Hash(secret)        // stored lookup value
//
// The raw password is never used as lookup material, only as key input.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call Encryptor.Destroy() when done with encryption operations
package crypto

// Package profile defines the encrypted and decrypted profile records and
// the codec that translates between them field by field.
//
// A profile is a fingerprint plus an open set of named fields. In encrypted
// form every field value is an opaque ciphertext string; in decrypted form
// the original values are restored. Profiles are immutable: the codec always
// produces new records, never mutates its input.
//
// Fields are mutually independent, so the codec encrypts and decrypts them
// concurrently. The aggregate operation is still atomic from the caller's
// perspective: either every field resolves or the whole call fails.
package profile

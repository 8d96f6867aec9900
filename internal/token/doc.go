// Package token persists the opaque authentication token that lets a
// session survive process restarts without re-prompting for the password.
//
// A stored record is the token value plus an absolute expiry, encoded as
//
//	value;expires=<RFC3339>
//
// Because ';' and '=' delimit the record, token values containing either
// character are rejected at write time rather than silently corrupting
// the store. Expired records read as absent and are removed lazily.
//
// Two backends are provided: a bbolt-backed file store and the OS keyring.
// The token value is only ever the authentication secret (the hashed
// password), never the raw password and never decrypted field content.
package token

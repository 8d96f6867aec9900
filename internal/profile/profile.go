package profile

import (
	"encoding/json"
	"fmt"
)

// Encrypted is a profile as it exists at rest: a fingerprint identifying
// the password that unlocks it, plus ciphertext field values.
type Encrypted struct {
	Fingerprint string            `json:"fingerprint"`
	Fields      map[string]string `json:"fields"`
}

// Decrypted is a profile after a successful unlock. It exists only in
// memory, per authenticated session, and is discarded on logout.
type Decrypted struct {
	Fingerprint string
	Fields      map[string]any
}

// Decode projects the decrypted fields into v, which is typically a
// pointer to a struct with json tags matching the field names.
func (p *Decrypted) Decode(v any) error {
	data, err := json.Marshal(p.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode profile fields: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode profile fields: %w", err)
	}
	return nil
}

// Collection is the ordered set of enrolled profiles supplied at setup.
// Fingerprints are expected to be unique; if they are not, the first
// match wins.
type Collection []*Encrypted

// Lookup returns the first profile whose fingerprint matches.
func (c Collection) Lookup(fingerprint string) (*Encrypted, bool) {
	for _, p := range c {
		if p.Fingerprint == fingerprint {
			return p, true
		}
	}
	return nil, false
}

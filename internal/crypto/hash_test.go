package crypto

import (
	"testing"
)

func TestHash_Deterministic(t *testing.T) {
	h1, err := Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	h2, err := Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if h1 != h2 {
		t.Errorf("Expected identical digests for identical input, got %s and %s", h1, h2)
	}
}

func TestHash_DistinctInputs(t *testing.T) {
	inputs := []any{"p1", "p2", "", "P1", 42, []string{"p1"}, map[string]string{"a": "b"}}
	seen := make(map[string]any)
	for _, input := range inputs {
		digest, err := Hash(input)
		if err != nil {
			t.Fatalf("Hash(%v) failed: %v", input, err)
		}
		if prev, ok := seen[digest]; ok {
			t.Errorf("Collision between %v and %v", prev, input)
		}
		seen[digest] = input
	}
}

func TestHash_HexForm(t *testing.T) {
	digest, err := Hash("anything")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(digest) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(digest))
	}
	for _, c := range digest {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Errorf("Unexpected character %q in digest", c)
		}
	}
}

func TestHash_UnserializableValue(t *testing.T) {
	if _, err := Hash(make(chan int)); err == nil {
		t.Error("Expected error for unserializable value")
	}
}

func TestDeriveChain(t *testing.T) {
	secret, err := DeriveSecret("hunter2")
	if err != nil {
		t.Fatalf("DeriveSecret failed: %v", err)
	}
	fingerprint, err := DeriveFingerprint(secret)
	if err != nil {
		t.Fatalf("DeriveFingerprint failed: %v", err)
	}

	// The chain must be exactly hash(hash(rawPassword))
	inner, err := Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	outer, err := Hash(inner)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if secret != inner {
		t.Errorf("DeriveSecret mismatch: got %s, want %s", secret, inner)
	}
	if fingerprint != outer {
		t.Errorf("DeriveFingerprint mismatch: got %s, want %s", fingerprint, outer)
	}
	if secret == fingerprint {
		t.Error("Secret and fingerprint must differ")
	}
}

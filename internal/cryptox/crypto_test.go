package cryptox

import (
	"bytes"
	"testing"
)

func TestPrehashPassword_Deterministic(t *testing.T) {
	a := PrehashPassword("alice@example.com", []byte("hunter22"))
	b := PrehashPassword("alice@example.com", []byte("hunter22"))

	if len(a) != PrehashSize {
		t.Fatalf("len = %d, want %d", len(a), PrehashSize)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("same input gave different pre-hashes")
	}
}

func TestPrehashPassword_EmailIsNormalized(t *testing.T) {
	a := PrehashPassword("Alice@Example.com ", []byte("hunter22"))
	b := PrehashPassword("alice@example.com", []byte("hunter22"))
	if !bytes.Equal(a, b) {
		t.Fatal("case or surrounding space changed the pre-hash")
	}
}

func TestPrehashPassword_SaltedByAccount(t *testing.T) {
	a := PrehashPassword("alice@example.com", []byte("hunter22"))
	b := PrehashPassword("bob@example.com", []byte("hunter22"))
	c := PrehashPassword("alice@example.com", []byte("hunter23"))

	if bytes.Equal(a, b) {
		t.Fatal("different accounts share a pre-hash")
	}
	if bytes.Equal(a, c) {
		t.Fatal("different passwords share a pre-hash")
	}
}

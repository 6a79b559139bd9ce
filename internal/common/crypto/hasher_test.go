package crypto

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("s3cret!")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hash == "s3cret!" {
		t.Fatal("expected hash to differ from plaintext")
	}

	ok, err := h.Verify(hash, "s3cret!")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify(hash, "wrong")
	if err != nil {
		t.Fatalf("expected no error on mismatch, got %v", err)
	}
	if ok {
		t.Fatal("expected mismatch for wrong password")
	}
}

func TestBcryptHasher_SaltedHashes(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatal("expected distinct hashes for the same password")
	}
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	h := NewBcryptHasher()
	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cost != 10 {
		t.Errorf("expected cost 10, got %d", cost)
	}
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	ok, err := h.Verify("not-a-hash", "pw")
	if err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if ok {
		t.Fatal("expected no match for malformed hash")
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}
	if _, err := h.Hash(strings.Repeat("a", 73)); err == nil {
		t.Fatal("expected error for password longer than 72 bytes")
	}
}

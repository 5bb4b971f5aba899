package security_test

import (
	"testing"

	"github.com/candyhaus/sweetshop/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if hash == "hunter22" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := security.CheckPassword(hash, "hunter22"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}

	if err := security.CheckPassword(hash, "hunter23"); err == nil {
		t.Fatal("wrong password accepted")
	}
}

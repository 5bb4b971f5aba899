package auth_test

import (
	"testing"
	"time"

	"github.com/candyhaus/sweetshop/internal/auth"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken(42, "alice@example.com", "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}

	if claims.UserID != 42 {
		t.Fatalf("got userId %d, want 42", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("got email %q", claims.Email)
	}
	if claims.Role != "admin" {
		t.Fatalf("got role %q", claims.Role)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	m1 := auth.NewManager("secret-one", time.Hour)
	m2 := auth.NewManager("secret-two", time.Hour)

	token, err := m1.GenerateToken(1, "a@b.com", "user")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := m2.VerifyToken(token); err == nil {
		t.Fatal("expected verification to fail with a different secret")
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	m := auth.NewManager("test-secret", time.Millisecond)

	token, err := m.GenerateToken(1, "a@b.com", "user")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := m.VerifyToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	if _, err := m.VerifyToken("not-a-token"); err == nil {
		t.Fatal("expected garbage token to be rejected")
	}
}

// same token, same identity: statelessness means verification is pure
func TestVerifyToken_Deterministic(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken(7, "bob@example.com", "user")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	first, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}

	second, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}

	if first.UserID != second.UserID || first.Email != second.Email || first.Role != second.Role {
		t.Fatalf("identities differ: %+v vs %+v", first, second)
	}
}

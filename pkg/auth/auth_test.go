package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the password")
	}

	if err := VerifyPassword(hash, "correct horse battery staple"); err != nil {
		t.Errorf("verification of correct password failed: %v", err)
	}
	if err := VerifyPassword(hash, "wrong password"); err == nil {
		t.Error("verification of wrong password should fail")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestNewMinter_EmptySecret(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		if _, err := NewMinter(secret); err == nil {
			t.Errorf("expected error for secret %q", secret)
		}
	}
}

func TestMinter_MintAndVerify(t *testing.T) {
	m, err := NewMinter("test-secret")
	if err != nil {
		t.Fatalf("NewMinter failed: %v", err)
	}

	token, err := m.Mint("service-account")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if !strings.Contains(token, ".") {
		t.Fatalf("token missing signature separator: %q", token)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "service-account" {
		t.Errorf("expected subject 'service-account', got %q", claims.Subject)
	}
	if claims.Nonce == "" {
		t.Error("expected non-empty nonce")
	}
	if !claims.Expiry().After(time.Now()) {
		t.Error("expected expiry in the future")
	}
}

func TestMinter_MintEmptySubject(t *testing.T) {
	m, _ := NewMinter("test-secret")
	if _, err := m.Mint(""); err == nil {
		t.Error("expected error for empty subject")
	}
}

func TestMinter_VerifyRejectsTampering(t *testing.T) {
	m, _ := NewMinter("test-secret")
	token, err := m.Mint("user")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", strings.ReplaceAll(token, ".", "")},
		{"garbage", "not-a-token"},
		{"flipped payload byte", "A" + token[1:]},
		{"truncated signature", token[:len(token)-2]},
		{"signature only", "." + strings.SplitN(token, ".", 2)[1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestMinter_VerifyRejectsForeignSecret(t *testing.T) {
	m1, _ := NewMinter("secret-one")
	m2, _ := NewMinter("secret-two")

	token, err := m1.Mint("user")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	if _, err := m2.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token from another secret should be invalid, got %v", err)
	}
}

func TestMinter_VerifyExpiredToken(t *testing.T) {
	current := time.Unix(1700000000, 0)
	m, err := NewMinter("test-secret",
		WithTTL(time.Minute),
		WithClock(func() time.Time { return current }),
	)
	if err != nil {
		t.Fatalf("NewMinter failed: %v", err)
	}

	token, err := m.Mint("user")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	// Still valid just before expiry.
	current = current.Add(59 * time.Second)
	if _, err := m.Verify(token); err != nil {
		t.Errorf("token should still be valid: %v", err)
	}

	// Invalid once the expiry passes.
	current = current.Add(2 * time.Second)
	if _, err := m.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestMinter_TokensAreUnique(t *testing.T) {
	m, _ := NewMinter("test-secret")

	t1, err := m.Mint("user")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	t2, err := m.Mint("user")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	if t1 == t2 {
		t.Error("tokens for the same subject should differ by nonce")
	}
}

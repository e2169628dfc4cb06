package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	svc, err := NewService("admin@example.com", string(hash), []byte("test-secret"))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLogin_UndifferentiatedFailure(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong email", "other@example.com", "correct horse"},
		{"wrong password", "admin@example.com", "wrong"},
		{"both wrong", "other@example.com", "wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(tc.email, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("want ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLogin_NormalizesEmail(t *testing.T) {
	svc := newTestService(t)
	token, err := svc.Login("  Admin@Example.COM ", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Email != "admin@example.com" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateToken_Expiry(t *testing.T) {
	svc := newTestService(t)
	issued := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Login("admin@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(TokenTTL - time.Minute) }
	if _, err := svc.ValidateToken(token); err != nil {
		t.Fatalf("token must still be valid just before expiry: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(TokenTTL + time.Minute) }
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("token must be rejected after expiry")
	}
}

func TestValidateToken_RejectsForeignSignature(t *testing.T) {
	svc := newTestService(t)
	other, err := NewService("admin@example.com", svc.passwordHash, []byte("another-secret"))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	token, err := other.Login("admin@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}

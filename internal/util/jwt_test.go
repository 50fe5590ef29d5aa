package util

import (
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, expiresAt, err := manager.Generate(7, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 || claims.RoleID != 2 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("expected a token id claim")
	}
}

func TestGenerateUniquePerCall(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	first, _, err := manager.Generate(7, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, _, err := manager.Generate(7, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first == second {
		t.Fatal("tokens issued back to back must differ")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("secret-a", time.Hour).Generate(7, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTManager("secret-b", time.Hour).Parse(token); err == nil {
		t.Fatal("expected parse to fail with a different secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	token, _, err := NewJWTManager("test-secret", -time.Minute).Generate(7, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTManager("test-secret", time.Hour).Parse(token); err == nil {
		t.Fatal("expected parse to reject an expired token")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := NewJWTManager("test-secret", time.Hour).Parse("not-a-token"); err == nil {
		t.Fatal("expected parse to fail")
	}
}

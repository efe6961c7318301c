package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPasswordHash("secret123", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Generate("65a000000000000000000001", RoleDriver)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UserID != "65a000000000000000000001" {
		t.Fatalf("unexpected userId: %q", claims.UserID)
	}
	if claims.Role != RoleDriver {
		t.Fatalf("unexpected role: %q", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Generate("id", RoleAdmin)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := NewManager("secret-b", time.Hour).Parse(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	token, err := m.Generate("id", RoleAdmin)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Fatal("expired token was accepted")
	}
}

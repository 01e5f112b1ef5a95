package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestSignAndParse(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New()

	token, err := svc.Sign(userID)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("Parse() user id = %s, want %s", claims.UserID, userID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").Sign(uuid.New())
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	if _, err := NewJWTService("secret-b").Parse(token); err == nil {
		t.Error("Parse() accepted a token signed with a different secret")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := NewJWTService("secret").Parse("not-a-token"); err == nil {
		t.Error("Parse() accepted a malformed token")
	}
}

package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

var testUser = model.User{
	ID:       42,
	Username: "dana",
	Email:    "dana@example.com",
	Role:     model.RoleEmployee,
}

func TestTokenRoundTrip(t *testing.T) {
	signed, err := NewToken("access-secret", testUser, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	claims, err := VerifyToken(signed.Token, "access-secret")
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.ID != testUser.ID || claims.Username != testUser.Username ||
		claims.Role != testUser.Role || claims.Email != testUser.Email {
		t.Fatalf("claims differ after round trip: %+v", claims)
	}
	if !signed.Exp.After(time.Now().UTC()) {
		t.Fatalf("expiry %v is not in the future", signed.Exp)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	signed, err := NewToken("access-secret", testUser, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	_, err = VerifyToken(signed.Token, "access-secret")
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	// A refresh token must never verify against the access secret.
	signed, err := NewToken("refresh-secret", testUser, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	_, err = VerifyToken(signed.Token, "access-secret")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := VerifyToken("not.a.jwt", "access-secret")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHashRefreshRaw(t *testing.T) {
	a := HashRefreshRaw("token-a")
	b := HashRefreshRaw("token-b")
	if a == b {
		t.Fatal("distinct tokens hash to the same value")
	}
	if a != HashRefreshRaw("token-a") {
		t.Fatal("hash is not deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

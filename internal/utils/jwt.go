package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for refresh token allow-list entries
	"encoding/hex"  // hex encoding of digests
	"errors"        // sentinel errors and errors.Is
	"time"          // expiry arithmetic

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// ErrTokenExpired is returned by VerifyToken when the token was well formed
// and correctly signed but its expiry has passed.  Callers use it to
// distinguish "please refresh" from "reject outright".
var ErrTokenExpired = errors.New("token expired")

// ErrInvalidToken is returned for every other verification failure: bad
// signature, wrong signing method, malformed payload.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the claim set carried by both access and refresh tokens:
// the user's identity plus the registered expiry/issued-at claims.
// Access and refresh tokens share this shape but are signed with
// different secrets so one can never be presented in place of the other.
type Claims struct {
	ID       uint64     `json:"id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	Email    string     `json:"email"`
	jwt.RegisteredClaims
}

// SignedToken bundles a serialized JWT with its expiration time.  The
// expiry is returned alongside the string so handlers can set cookie
// lifetimes without re-parsing the token.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewToken builds and signs an HS256 JWT for a user.  The same function
// issues access tokens (short ttl, access secret) and refresh tokens
// (long ttl, refresh secret); only the secret and ttl differ.
func NewToken(secret string, u model.User, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Email:    u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a token against the given secret and
// returns its claims.  Expired tokens yield ErrTokenExpired; any other
// failure (including a token signed with a different secret or signing
// method) yields ErrInvalidToken.
func VerifyToken(raw, secret string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashRefreshRaw returns the SHA-256 hash of a refresh token as a hex
// string.  Only the hash is stored in the refresh_tokens allow-list so a
// leaked database cannot be used to mint sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

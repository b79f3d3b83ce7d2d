package model

import "time"

// Role is the authorization tier of a user.  It is a closed enumeration:
// only the two constants below are valid values.  Keeping the type
// distinct from string prevents typo-class bugs when comparing roles.
type Role string

const (
	RoleAdmin    Role = "Admin"    // may manage rooms and see every booking
	RoleEmployee Role = "Employee" // may book rooms and manage own bookings
)

// ParseRole maps a free-text role string onto the closed enumeration.
// The second return value reports whether the input was a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleEmployee:
		return RoleEmployee, true
	}
	return "", false
}

// User mirrors the `users` table.  PasswordHash holds a bcrypt digest;
// the plain password never leaves the registration/login handlers.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Email        – contact address carried into token claims.
//  Role         – Admin or Employee.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	Email        string    // users.email
	Role         Role      // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` allow-list.  The
// plain token is never stored; only its SHA-256 hash.  A row whose
// RevokedAt is set (logout) or whose ExpiresAt has passed no longer
// authorizes refresh calls even if the JWT signature is still valid.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

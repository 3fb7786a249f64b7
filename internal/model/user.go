package model

import "time"

// User roles as stored in the users.role enum and carried in the JWT
// "role" claim.  Coaches publish and manage slots; members reserve
// them.  The role decides which cancellation policy applies.
const (
	RoleMember = "MEMBER"
	RoleCoach  = "COACH"
)

// User represents an application user record as stored in the `users`
// table.  Members carry a reference to the coach they train with; the
// field is nil for coaches.
//
// Fields:
//  ID           – primary key identifier.
//  FirstName    – given name, shown on counterpart listings.
//  LastName     – family name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – MEMBER or COACH.
//  CoachID      – the member's coach (nil for coaches).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CoachID      *uint64   // users.coach_id (nullable)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only a
// SHA-256 hash of the raw token is stored; the raw value goes back to
// the client once and is never persisted.
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

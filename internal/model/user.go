package model

import "time"

// Roles carried in the users table and in the JWT "role" claim.
const (
	RoleOwner  = "OWNER"
	RoleCoach  = "COACH"
	RoleParent = "PARENT"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleOwner || r == RoleCoach || r == RoleParent
}

// User is an account: the club owner, a coach or a parent.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	PhoneNumber  *string   `json:"phone_number"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken models a row of refresh_tokens. Only the SHA-256 digest of
// the raw token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

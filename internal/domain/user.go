package domain

import (
	"context"
	"time"
)

// Role is an application role. Roles form a strict capability hierarchy:
// PARTICIPANT < STAFF < ADMIN.
type Role string

const (
	RoleParticipant Role = "PARTICIPANT"
	RoleStaff       Role = "STAFF"
	RoleAdmin       Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleParticipant: 1,
	RoleStaff:       2,
	RoleAdmin:       3,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// HasRole reports whether r is one of the allowed roles.
func (r Role) HasRole(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// AtLeast reports whether r has at least the capabilities of min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// User represents an account. Role determines which operations are permitted.
// Deleted users are soft-deleted: DeletedAt is set and the row is excluded
// from all reads.
// swagger:model User
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Phone        *string    `json:"phone,omitempty"`
	Organization *string    `json:"organization,omitempty"`
	Role         Role       `json:"role"`
	PasswordHash string     `json:"-"`
	Salt         string     `json:"-"`
	DeletedAt    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is set by the repository on create.
func NewUser(username, firstName, lastName, email string, role Role, createdAt time.Time) *User {
	return &User{
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Role:      role,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, email string, role Role, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID int64, err error)
}

// UserRepository defines the interface for user storage.
// All reads exclude soft-deleted users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateRole(ctx context.Context, id int64, role Role) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	CountByRole(ctx context.Context, role Role) (int, error)
}

// AuthService defines signup and login.
type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}

// SignUpInput carries the fields required to create an account.
type SignUpInput struct {
	Username     string
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Phone        *string
	Organization *string
}

// UserService defines account management operations.
type UserService interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	// PromoteRole sets the target user's role. Admin only.
	PromoteRole(ctx context.Context, actorID, targetID int64, role Role) error
	// SoftDelete marks the target user deleted. Admin only.
	SoftDelete(ctx context.Context, actorID, targetID int64) error
}

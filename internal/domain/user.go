package domain

import (
	"context"
	"time"
)

// User is the principal record for an account. PasswordHash is always a
// bcrypt output and is left empty in projections returned by FindPrincipal.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	ProfileImage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines persistence operations for users. Create must
// report unique-constraint violations as ErrDuplicateEmail or
// ErrDuplicateUsername.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// FindPrincipal loads a user without selecting the password hash.
	FindPrincipal(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, id string) error
}

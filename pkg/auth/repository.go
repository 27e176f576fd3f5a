package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors used by repository/use cases
var (
	ErrNotFound           = errors.New("not found")
	ErrUserAlreadyExists  = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired verification token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
)

// ErrValidation is returned when client input is missing or malformed.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// UserRepository abstracts persistence concerns from the domain layer.
// Create must report a duplicate email as ErrUserAlreadyExists even when
// the caller's existence check raced with another insert.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// ConsumeVerificationToken marks the unverified user holding token as
	// verified and clears the token, provided it expires after now. It
	// returns ErrNotFound when no such user exists.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (User, error)
}

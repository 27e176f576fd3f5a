package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a domain entity representing a registered account.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	IsVerified   bool
	// VerificationToken and VerificationExpires are both set while a
	// verification is pending and both nil otherwise.
	VerificationToken   *string
	VerificationExpires *time.Time
	CreatedAt           time.Time
}

// PendingVerification reports whether the user still holds a token that
// has not expired at now.
func (u User) PendingVerification(now time.Time) bool {
	return !u.IsVerified && u.VerificationToken != nil &&
		u.VerificationExpires != nil && u.VerificationExpires.After(now)
}

// RegisterInput is the signup payload accepted by the use case.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

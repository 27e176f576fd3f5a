package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenGenerator abstracts session token creation (e.g., JWT).
// It allows use cases to stay framework-agnostic.
type TokenGenerator interface {
	Generate(ctx context.Context, user User) (string, error)
}

// Notifier sends the transactional emails of the signup flow.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, name, token string) error
	SendWelcomeEmail(ctx context.Context, email, name string) error
}

const verificationTokenBytes = 32

// NewVerificationToken returns 256 random bits, hex encoded.
func NewVerificationToken() (string, error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

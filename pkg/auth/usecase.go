package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultVerificationTTL is how long an issued verification token stays valid.
const DefaultVerificationTTL = 24 * time.Hour

// AuthUseCase describes registration, verification and login behavior.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (User, error)
	Verify(ctx context.Context, token string) (User, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Profile(ctx context.Context, id uuid.UUID) (User, error)
}

type AuthResult struct {
	User  User
	Token string
}

// Option customizes the default AuthUseCase.
type Option func(*authService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *authService) { s.now = now }
}

// WithVerificationTTL sets the lifetime of issued verification tokens.
func WithVerificationTTL(ttl time.Duration) Option {
	return func(s *authService) {
		if ttl > 0 {
			s.verificationTTL = ttl
		}
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *authService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithTokenSource replaces the verification token source.
func WithTokenSource(fn func() (string, error)) Option {
	return func(s *authService) { s.newToken = fn }
}

type authService struct {
	repo     UserRepository
	tokens   TokenGenerator
	notifier Notifier

	now             func() time.Time
	newToken        func() (string, error)
	verificationTTL time.Duration
	bcryptCost      int
}

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(repo UserRepository, tokens TokenGenerator, notifier Notifier, opts ...Option) AuthUseCase {
	s := &authService{
		repo:            repo,
		tokens:          tokens,
		notifier:        notifier,
		now:             time.Now,
		newToken:        NewVerificationToken,
		verificationTTL: DefaultVerificationTTL,
		bcryptCost:      bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an unverified user and mails the verification link.
// The user is persisted before the email is sent; when sending fails the
// created user is returned together with the error.
func (s *authService) Register(ctx context.Context, in RegisterInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return User{}, ErrValidation("Missing required fields")
	}

	// Best-effort check; the store's unique constraint is the real guard.
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return User{}, ErrUserAlreadyExists
	case !errors.Is(err, ErrNotFound):
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	token, err := s.newToken()
	if err != nil {
		return User{}, fmt.Errorf("generate verification token: %w", err)
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return User{}, ErrValidation("password is too long")
		}
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	expires := now.Add(s.verificationTTL)
	user := User{
		ID:                  uuid.New(),
		Name:                name,
		Email:               email,
		PasswordHash:        string(passwordHash),
		VerificationToken:   &token,
		VerificationExpires: &expires,
		CreatedAt:           now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return User{}, ErrUserAlreadyExists
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}

	if err := s.notifier.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		return user, fmt.Errorf("send verification email: %w", err)
	}
	return user, nil
}

// Verify redeems a verification token. Wrong, expired and already used
// tokens all yield ErrInvalidToken.
func (s *authService) Verify(ctx context.Context, token string) (User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return User{}, ErrValidation("Verification token is required")
	}

	user, err := s.repo.ConsumeVerificationToken(ctx, token, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidToken
		}
		return User{}, fmt.Errorf("consume verification token: %w", err)
	}

	if err := s.notifier.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
		return user, fmt.Errorf("send welcome email: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return AuthResult{}, ErrNotVerified
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate session token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Profile(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/accounts/pkg/auth"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const userColumns = `id, name, email, password_hash, is_verified, verification_token, verification_expires, created_at`

// UserRepository implements auth.UserRepository on top of database/sql.
type UserRepository struct {
	db      DBTX
	dialect Dialect
}

func NewUserRepository(db DBTX, dialect Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: dialect}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) error {
	query := r.dialect.rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID.String(),
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
		user.VerificationToken,
		r.dialect.timeArg(user.VerificationExpires),
		r.dialect.TimeValue(user.CreatedAt),
	)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return auth.ErrUserAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (auth.User, error) {
	query := r.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (auth.User, error) {
	query := r.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return r.scanUser(r.db.QueryRowContext(ctx, query, id.String()))
}

// ConsumeVerificationToken matches and updates in one statement, so two
// concurrent redemptions of the same token cannot both succeed.
func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (auth.User, error) {
	query := r.dialect.rebind(`
		UPDATE users
		SET is_verified = TRUE, verification_token = NULL, verification_expires = NULL
		WHERE verification_token = ? AND verification_expires > ? AND is_verified = FALSE
		RETURNING ` + userColumns)
	return r.scanUser(r.db.QueryRowContext(ctx, query, token, r.dialect.TimeValue(now)))
}

func (r *UserRepository) scanUser(row *sql.Row) (auth.User, error) {
	var (
		user      auth.User
		token     sql.NullString
		expires   nullTime
		createdAt nullTime
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.IsVerified, &token, &expires, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, auth.ErrNotFound
		}
		return auth.User{}, fmt.Errorf("db error: %w", err)
	}
	if token.Valid {
		user.VerificationToken = &token.String
	}
	user.VerificationExpires = expires.ptr()
	user.CreatedAt = createdAt.Time
	return user, nil
}

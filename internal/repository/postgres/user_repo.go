package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/easygametopup/storefront/internal/domain"
)

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userSelectFields = `id, email, COALESCE(password_hash, '') AS password_hash,
	COALESCE(google_id, '') AS google_id, email_verified, COALESCE(name, '') AS name,
	COALESCE(avatar_url, '') AS avatar_url, role, created_at, updated_at`

// CreateUser inserts a new password-based account. Email must already be
// normalized to lowercase by the caller.
func (r *UserRepo) CreateUser(ctx context.Context, email, passwordHash, name string) (*domain.User, error) {
	id := uuid.NewString()
	query := `
	INSERT INTO users (id, email, password_hash, name)
	VALUES ($1, $2, $3, NULLIF($4, ''))`

	if _, err := r.db.ExecContext(ctx, query, id, email, passwordHash, name); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetUserByID(ctx, id)
}

// UpsertGoogleUser creates or updates an account keyed by email with the
// identity asserted by Google.
func (r *UserRepo) UpsertGoogleUser(ctx context.Context, email, googleID string, emailVerified bool, name, avatarURL string) (*domain.User, error) {
	query := `
	INSERT INTO users (id, email, google_id, email_verified, name, avatar_url)
	VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
	ON CONFLICT (email) DO UPDATE SET
		google_id      = EXCLUDED.google_id,
		email_verified = EXCLUDED.email_verified,
		name           = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
		avatar_url     = COALESCE(NULLIF(EXCLUDED.avatar_url, ''), users.avatar_url),
		updated_at     = NOW()
	RETURNING id`

	var id string
	err := r.db.QueryRowxContext(ctx, query, uuid.NewString(), email, googleID, emailVerified, name, avatarURL).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert google user: %w", err)
	}
	return r.GetUserByID(ctx, id)
}

// GetUserByEmail returns (nil, nil) when no user exists.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userSelectFields + ` FROM users WHERE email = $1`
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID returns (nil, nil) when no user exists.
func (r *UserRepo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userSelectFields + ` FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates the display name.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID, name string) error {
	query := `UPDATE users SET name = NULLIF($2, ''), updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, name); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

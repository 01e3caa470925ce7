package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/easygametopup/storefront/internal/domain"
)

type SessionRepo struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// CreateSession persists a new refresh session keyed by the token
// fingerprint.
func (r *SessionRepo) CreateSession(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*domain.AuthSession, error) {
	session := &domain.AuthSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	query := `
	INSERT INTO auth_sessions (id, user_id, token_hash, expires_at)
	VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, session.ID, session.UserID, session.TokenHash, session.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSessionByTokenHash returns (nil, nil) when no session matches the
// fingerprint.
func (r *SessionRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.AuthSession, error) {
	var session domain.AuthSession
	query := `
	SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
	FROM auth_sessions
	WHERE token_hash = $1`

	err := r.db.GetContext(ctx, &session, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// RotateSession swaps the stored fingerprint and extends the expiry,
// conditioned on the old fingerprint still being in place. The WHERE clause
// is the compare-and-swap: of two concurrent rotations presenting the same
// stale token, only one observes the pre-rotation row; the other sees zero
// rows updated and must be rejected.
func (r *SessionRepo) RotateSession(ctx context.Context, sessionID, oldTokenHash, newTokenHash string, expiresAt time.Time) (bool, error) {
	query := `
	UPDATE auth_sessions
	SET token_hash = $3, expires_at = $4, revoked_at = NULL
	WHERE id = $1 AND token_hash = $2 AND revoked_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, sessionID, oldTokenHash, newTokenHash, expiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to rotate session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// RevokeSessionByTokenHash sets revoked_at on the matching non-revoked
// session. Revoking an unknown fingerprint is a no-op.
func (r *SessionRepo) RevokeSessionByTokenHash(ctx context.Context, tokenHash string) error {
	query := `
	UPDATE auth_sessions
	SET revoked_at = NOW()
	WHERE token_hash = $1 AND revoked_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// DeleteDeadSessions removes sessions that have been revoked or expired
// since before the cutoff. Called only by the background cleanup worker;
// the auth flows never delete rows.
func (r *SessionRepo) DeleteDeadSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
	DELETE FROM auth_sessions
	WHERE (revoked_at IS NOT NULL AND revoked_at < $1)
	   OR expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete dead sessions: %w", err)
	}
	return result.RowsAffected()
}

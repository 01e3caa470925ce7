package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/easygametopup/storefront/internal/domain"
	pkgauth "github.com/easygametopup/storefront/pkg/auth"
)

// SessionRepository is the persistence contract for refresh sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*domain.AuthSession, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.AuthSession, error)
	RotateSession(ctx context.Context, sessionID, oldTokenHash, newTokenHash string, expiresAt time.Time) (bool, error)
	RevokeSessionByTokenHash(ctx context.Context, tokenHash string) error
}

// RefreshManager owns the refresh-token lifecycle: issuance, rotation and
// revocation. It only ever hands the raw token to its caller; storage sees
// the fingerprint.
type RefreshManager struct {
	sessions SessionRepository
	ttl      time.Duration
}

func NewRefreshManager(sessions SessionRepository, ttl time.Duration) *RefreshManager {
	return &RefreshManager{sessions: sessions, ttl: ttl}
}

// Issue creates a new refresh session for the user and returns the raw
// token together with its expiry. The raw token cannot be recovered from
// storage afterwards.
func (m *RefreshManager) Issue(ctx context.Context, userID string) (string, time.Time, error) {
	raw, err := pkgauth.NewRefreshToken()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().Add(m.ttl)
	if _, err := m.sessions.CreateSession(ctx, userID, pkgauth.FingerprintToken(raw), expiresAt); err != nil {
		return "", time.Time{}, err
	}

	return raw, expiresAt, nil
}

// Rotate exchanges a presented refresh token for a new one. The presented
// token is rejected when no session matches its fingerprint, the session is
// revoked, or it has expired. On success the stored fingerprint is replaced
// atomically, which is the sole thing that invalidates replays of the old
// token: a concurrent rotation of the same stale token loses the
// compare-and-swap and is rejected too.
func (m *RefreshManager) Rotate(ctx context.Context, presented string) (string, *domain.AuthSession, error) {
	session, err := m.sessions.GetSessionByTokenHash(ctx, pkgauth.FingerprintToken(presented))
	if err != nil {
		return "", nil, fmt.Errorf("refresh session lookup failed: %w", err)
	}
	if session == nil || session.Revoked() || session.Expired(time.Now()) {
		return "", nil, ErrUnauthorized
	}

	newRaw, err := pkgauth.NewRefreshToken()
	if err != nil {
		return "", nil, err
	}

	newExpiry := time.Now().Add(m.ttl)
	rotated, err := m.sessions.RotateSession(ctx, session.ID, session.TokenHash,
		pkgauth.FingerprintToken(newRaw), newExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("refresh session rotation failed: %w", err)
	}
	if !rotated {
		return "", nil, ErrUnauthorized
	}

	session.TokenHash = pkgauth.FingerprintToken(newRaw)
	session.ExpiresAt = newExpiry
	session.RevokedAt = nil
	return newRaw, session, nil
}

// Revoke marks the matching non-revoked session as revoked. An unknown or
// already-revoked token is a no-op, not an error.
func (m *RefreshManager) Revoke(ctx context.Context, presented string) error {
	return m.sessions.RevokeSessionByTokenHash(ctx, pkgauth.FingerprintToken(presented))
}

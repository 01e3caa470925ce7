package domain

import "time"

// AuthSession is one refresh-token lineage. Only the SHA-256 fingerprint of
// the raw token is stored; the fingerprint is replaced on every successful
// rotation, which is what invalidates replayed tokens. Rows are never
// deleted by the auth flows themselves, expiry is checked at use time.
type AuthSession struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	TokenHash string     `db:"token_hash" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

func (s *AuthSession) Revoked() bool {
	return s.RevokedAt != nil
}

func (s *AuthSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

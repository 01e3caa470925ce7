package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/easygametopup/storefront/internal/domain"
	pkgauth "github.com/easygametopup/storefront/pkg/auth"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) newID() string {
	r.nextID++
	return fmt.Sprintf("user-%d", r.nextID)
}

func (r *fakeUserRepo) CreateUser(_ context.Context, email, passwordHash, name string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return nil, errors.New("duplicate email")
	}
	user := &domain.User{
		ID:           r.newID(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}
	r.byEmail[email] = user
	return user, nil
}

func (r *fakeUserRepo) UpsertGoogleUser(_ context.Context, email, googleID string, emailVerified bool, name, avatarURL string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.byEmail[email]; ok {
		user.GoogleID = googleID
		user.EmailVerified = emailVerified
		if user.Name == "" {
			user.Name = name
		}
		if user.AvatarURL == "" {
			user.AvatarURL = avatarURL
		}
		return user, nil
	}
	user := &domain.User{
		ID:            r.newID(),
		Email:         email,
		GoogleID:      googleID,
		EmailVerified: emailVerified,
		Name:          name,
		AvatarURL:     avatarURL,
		Role:          domain.RoleUser,
		CreatedAt:     time.Now(),
	}
	r.byEmail[email] = user
	return user, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail[email], nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, userID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byEmail {
		if user.ID == userID {
			user.Name = name
			return nil
		}
	}
	return errors.New("user not found")
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byEmail)
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.AuthSession // keyed by id
	nextID   int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.AuthSession)}
}

func (r *fakeSessionRepo) CreateSession(_ context.Context, userID, tokenHash string, expiresAt time.Time) (*domain.AuthSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	session := &domain.AuthSession{
		ID:        fmt.Sprintf("session-%d", r.nextID),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	r.sessions[session.ID] = session
	return session, nil
}

func (r *fakeSessionRepo) GetSessionByTokenHash(_ context.Context, tokenHash string) (*domain.AuthSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.TokenHash == tokenHash {
			copied := *session
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) RotateSession(_ context.Context, sessionID, oldTokenHash, newTokenHash string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok || session.TokenHash != oldTokenHash || session.RevokedAt != nil {
		return false, nil
	}
	session.TokenHash = newTokenHash
	session.ExpiresAt = expiresAt
	session.RevokedAt = nil
	return true, nil
}

func (r *fakeSessionRepo) RevokeSessionByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.TokenHash == tokenHash && session.RevokedAt == nil {
			now := time.Now()
			session.RevokedAt = &now
		}
	}
	return nil
}

type fakeVerifier struct {
	identity *GoogleIdentity
	err      error
	calls    int
}

func (v *fakeVerifier) Verify(context.Context, string) (*GoogleIdentity, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

func newTestService(t *testing.T, users *fakeUserRepo, sessions *fakeSessionRepo, verifier IdentityVerifier) *Service {
	t.Helper()
	codec, err := pkgauth.NewTokenCodec([]byte("test-secret"), "EasyGameTopUp", "easygametopup-users", 15*time.Minute)
	require.NoError(t, err)
	return NewService(users, NewRefreshManager(sessions, 7*24*time.Hour), codec, verifier, nil, zap.NewNop())
}

func TestRegisterAndConflict(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newTestService(t, users, newFakeSessionRepo(), nil)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "  A@X.com ", "password123", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, _, err = svc.Register(ctx, "a@x.com", "password456", "Other")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, users.count())
}

func TestRegisterWeakPassword(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeUserRepo(), newFakeSessionRepo(), nil)

	_, _, err := svc.Register(context.Background(), "a@x.com", "short", "Alice")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestLoginFailureIsUniform(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newTestService(t, users, newFakeSessionRepo(), nil)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "known@x.com", "password123", "")
	require.NoError(t, err)

	// Google-only account has no password hash.
	_, err = users.UpsertGoogleUser(ctx, "google@x.com", "sub-1", true, "", "")
	require.NoError(t, err)

	for _, tc := range []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@x.com", "password123"},
		{"wrong password", "known@x.com", "wrong-password"},
		{"passwordless account", "google@x.com", "password123"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tc.email, tc.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeUserRepo(), newFakeSessionRepo(), nil)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "a@x.com", "password123", "Alice")
	require.NoError(t, err)

	user, pair, err := svc.Login(ctx, "A@X.COM", "password123")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	claims, err := svc.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, string(domain.RoleUser), claims.Role)
}

func TestRefreshRotatesAndRejectsReplay(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeUserRepo(), newFakeSessionRepo(), nil)
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, "a@x.com", "password123", "")
	require.NoError(t, err)

	user, rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// A replay of the already-rotated token is rejected; the replacement
	// still works.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeUserRepo(), newFakeSessionRepo(), nil)
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, "a@x.com", "password123", "")
	require.NoError(t, err)

	svc.Logout(ctx, pair.RefreshToken)

	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Logging out the same token again is harmless.
	svc.Logout(ctx, pair.RefreshToken)
	svc.Logout(ctx, "")
}

func TestRefreshUnknownToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeUserRepo(), newFakeSessionRepo(), nil)

	_, _, err := svc.Refresh(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginWithGoogle(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	verifier := &fakeVerifier{identity: &GoogleIdentity{
		Sub:           "google-sub",
		Email:         "G@X.com",
		EmailVerified: true,
		Name:          "Gina",
		Picture:       "https://example.com/p.png",
	}}
	svc := newTestService(t, users, newFakeSessionRepo(), verifier)
	ctx := context.Background()

	user, pair, err := svc.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, "g@x.com", user.Email)
	assert.Equal(t, "google-sub", user.GoogleID)
	assert.NotEmpty(t, pair.RefreshToken)

	// Second sign-in reuses the account.
	again, _, err := svc.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, 1, users.count())
}

func TestLoginWithGoogleVerificationFailure(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	verifier := &fakeVerifier{err: ErrGoogleVerification}
	svc := newTestService(t, users, newFakeSessionRepo(), verifier)

	_, _, err := svc.LoginWithGoogle(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrGoogleVerification)
	assert.Zero(t, users.count(), "no account may be created on verification failure")
}

func TestLoginWithGoogleDisabled(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeUserRepo(), newFakeSessionRepo(), nil)

	_, _, err := svc.LoginWithGoogle(context.Background(), "id-token")
	assert.ErrorIs(t, err, ErrGoogleDisabled)
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeUserRepo(), newFakeSessionRepo(), nil)
	ctx := context.Background()

	registered, pair, err := svc.Register(ctx, "a@x.com", "password123", "Alice")
	require.NoError(t, err)

	user, err := svc.CurrentUser(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.CurrentUser(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeUserRepo(), newFakeSessionRepo(), nil)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "a@x.com", "password123", "Alice")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, registered.ID, "  Alicia  ")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
}

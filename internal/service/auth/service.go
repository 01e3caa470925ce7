package auth

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/easygametopup/storefront/internal/domain"
	pkgauth "github.com/easygametopup/storefront/pkg/auth"
)

const (
	profileCachePrefix = "user_profile:"
	profileCacheTTL    = time.Hour
)

// UserRepository is the persistence contract for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, name string) (*domain.User, error)
	UpsertGoogleUser(ctx context.Context, email, googleID string, emailVerified bool, name, avatarURL string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID, name string) error
}

// CacheRepository is the optional profile cache. A nil cache disables
// caching without changing behavior.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// IdentityVerifier validates a third-party id token.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// TokenPair is what every successful auth flow hands back to the transport
// layer, which turns it into the cookie pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service composes the password hasher, token codec, refresh manager and
// identity verifier into the login/registration/refresh/logout flows.
type Service struct {
	users   UserRepository
	refresh *RefreshManager
	codec   *pkgauth.TokenCodec
	google  IdentityVerifier // nil when Google sign-in is disabled
	cache   CacheRepository  // nil when redis is unavailable
	logger  *zap.Logger
}

func NewService(users UserRepository, refresh *RefreshManager, codec *pkgauth.TokenCodec, google IdentityVerifier, cache CacheRepository, logger *zap.Logger) *Service {
	return &Service{
		users:   users,
		refresh: refresh,
		codec:   codec,
		google:  google,
		cache:   cache,
		logger:  logger,
	}
}

// NormalizeEmail lower-cases and trims an email address. Every flow keys
// accounts by the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a password account and starts a session. The email
// uniqueness check and the password length check happen before any side
// effect.
func (s *Service) Register(ctx context.Context, email, password, name string) (*domain.User, *TokenPair, error) {
	email = NormalizeEmail(email)
	password = strings.TrimSpace(password)

	if len(password) < 8 {
		return nil, nil, ErrWeakPassword
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	passwordHash, err := pkgauth.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.CreateUser(ctx, email, passwordHash, strings.TrimSpace(name))
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, pair, nil
}

// Login authenticates a password account. Unknown email, an account
// without a password and a wrong password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}

	if !pkgauth.CheckPasswordHash(strings.TrimSpace(password), user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// LoginWithGoogle verifies a Google id token and signs the asserted
// identity in, creating the account on first sight.
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (*domain.User, *TokenPair, error) {
	if s.google == nil {
		return nil, nil, ErrGoogleDisabled
	}

	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, nil, ErrGoogleVerification
	}

	return s.LoginWithGoogleIdentity(ctx, identity)
}

// LoginWithGoogleIdentity upserts the account for an already-verified
// Google identity and starts a session. The OAuth callback flow enters
// here after its own code exchange.
func (s *Service) LoginWithGoogleIdentity(ctx context.Context, identity *GoogleIdentity) (*domain.User, *TokenPair, error) {
	email := NormalizeEmail(identity.Email)

	user, err := s.users.UpsertGoogleUser(ctx, email, identity.Sub,
		bool(identity.EmailVerified), identity.Name, identity.Picture)
	if err != nil {
		return nil, nil, err
	}

	s.invalidateProfileCache(ctx, user.ID)

	pair, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates the presented refresh token and mints a fresh access
// token. The session owner's current role and email are re-read from
// storage, never trusted from the expired access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.User, *TokenPair, error) {
	newRefresh, session, err := s.refresh.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUnauthorized
	}

	accessToken, err := s.codec.Mint(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, nil, err
	}

	return user, &TokenPair{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

// Logout revokes the session behind the presented refresh token. It never
// fails the caller: cookies must be cleared regardless.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if err := s.refresh.Revoke(ctx, refreshToken); err != nil {
		s.logger.Warn("failed to revoke refresh session", zap.Error(err))
	}
}

// CurrentUser resolves the account behind an access token. The claims
// identify the user but the record is always re-fetched so role and name
// reflect storage, via the profile cache when one is available.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.codec.Verify(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if user := s.profileFromCache(ctx, claims.Subject); user != nil {
		return user, nil
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}

	s.storeProfileInCache(ctx, user)
	return user, nil
}

// UpdateProfile changes the display name and drops the cached profile.
func (s *Service) UpdateProfile(ctx context.Context, userID, name string) (*domain.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, strings.TrimSpace(name)); err != nil {
		return nil, err
	}

	s.invalidateProfileCache(ctx, userID)

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// AccessTokenTTL exposes the codec TTL for the cookie contract.
func (s *Service) AccessTokenTTL() time.Duration {
	return s.codec.TTL()
}

// VerifyAccessToken is used by the auth middleware.
func (s *Service) VerifyAccessToken(token string) (*pkgauth.AccessClaims, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (s *Service) startSession(ctx context.Context, user *domain.User) (*TokenPair, error) {
	refreshToken, _, err := s.refresh.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.Mint(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) profileFromCache(ctx context.Context, userID string) *domain.User {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, profileCachePrefix+userID)
	if err != nil || data == "" {
		return nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil
	}
	return &user
}

func (s *Service) storeProfileInCache(ctx context.Context, user *domain.User) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, profileCachePrefix+user.ID, data, profileCacheTTL); err != nil {
		s.logger.Warn("failed to cache user profile", zap.Error(err))
	}
}

func (s *Service) invalidateProfileCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, profileCachePrefix+userID); err != nil {
		s.logger.Warn("failed to invalidate profile cache", zap.Error(err))
	}
}

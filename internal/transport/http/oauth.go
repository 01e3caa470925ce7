package http

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/easygametopup/storefront/internal/config"
	"github.com/easygametopup/storefront/internal/service/auth"
	"github.com/easygametopup/storefront/pkg/httputil"
)

const oauthStateCookie = "egt_oauth_state"

// OAuthHandler implements the server-side Google code flow. The id-token
// flow in AuthHandler.GoogleSignIn is the primary path; this one serves
// clients that start from a plain redirect.
type OAuthHandler struct {
	oauth       *oauth2.Config
	auth        *auth.Service
	cookies     *httputil.CookieWriter
	frontendURL string
	logger      *zap.Logger
}

func NewOAuthHandler(oauthCfg *oauth2.Config, authService *auth.Service, cookies *httputil.CookieWriter, frontendURL string, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		oauth:       oauthCfg,
		auth:        authService,
		cookies:     cookies,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// GoogleLogin redirects the user to Google's consent screen.
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	state, err := newOAuthState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start sign-in"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, int((10 * time.Minute).Seconds()), "/", "", h.cookies.Secure, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

// GoogleCallback exchanges the authorization code, fetches the profile and
// signs the identity in through the same upsert flow the id-token path
// uses.
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		h.redirectWithError(c, "auth_failed")
		return
	}

	token, err := h.oauth.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.logger.Warn("oauth code exchange failed", zap.Error(err))
		h.redirectWithError(c, "auth_failed")
		return
	}

	profile, err := config.FetchGoogleUserInfo(c.Request.Context(), http.DefaultClient, token.AccessToken)
	if err != nil {
		h.logger.Warn("oauth userinfo fetch failed", zap.Error(err))
		h.redirectWithError(c, "user_info_failed")
		return
	}

	identity := auth.IdentityFromProfile(profile.ID, profile.Email, profile.VerifiedEmail, profile.Name, profile.Picture)
	_, pair, err := h.auth.LoginWithGoogleIdentity(c.Request.Context(), identity)
	if err != nil {
		h.logger.Error("google identity sign-in failed", zap.Error(err))
		h.redirectWithError(c, "server_error")
		return
	}

	h.cookies.SetTokenPair(c.Writer, pair.AccessToken, pair.RefreshToken)
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/profile")
}

func (h *OAuthHandler) redirectWithError(c *gin.Context, code string) {
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error="+code)
}

func newOAuthState() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

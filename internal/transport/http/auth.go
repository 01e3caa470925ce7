package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easygametopup/storefront/internal/service/auth"
	"github.com/easygametopup/storefront/internal/transport/http/middleware"
	"github.com/easygametopup/storefront/pkg/httputil"
)

type AuthHandler struct {
	auth    *auth.Service
	cookies *httputil.CookieWriter
	logger  *zap.Logger
}

func NewAuthHandler(authService *auth.Service, cookies *httputil.CookieWriter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	if !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	user, pair, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Error("registration failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		}
		return
	}

	h.cookies.SetTokenPair(c.Writer, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusCreated, gin.H{"user": user.Public()})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	h.cookies.SetTokenPair(c.Writer, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

type googleAuthRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// GoogleSignIn exchanges a client-obtained Google id token for a session.
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req googleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idToken is required"})
		return
	}

	user, pair, err := h.auth.LoginWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrGoogleDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrGoogleVerification):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			h.logger.Error("google sign-in failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		}
		return
	}

	h.cookies.SetTokenPair(c.Writer, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// Refresh rotates the refresh cookie and reissues the pair. Any rejection
// clears both cookies so a client with a dead session ends up logged out.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := httputil.RefreshTokenFromRequest(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing refresh token"})
		return
	}

	_, pair, err := h.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			h.cookies.ClearTokenPair(c.Writer)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}
		h.logger.Error("refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh session"})
		return
	}

	h.cookies.SetTokenPair(c.Writer, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"message": "Session refreshed"})
}

// Logout revokes the refresh session when the cookie is present and clears
// both cookies either way.
func (h *AuthHandler) Logout(c *gin.Context) {
	if refreshToken, err := httputil.RefreshTokenFromRequest(c.Request); err == nil {
		h.auth.Logout(c.Request.Context(), refreshToken)
	}

	h.cookies.ClearTokenPair(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me resolves the current user from the access cookie. Absent or invalid
// credentials are unauthenticated, not an error.
func (h *AuthHandler) Me(c *gin.Context) {
	token, err := httputil.AccessTokenFromRequest(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false, "user": nil})
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false, "user": nil})
			return
		}
		h.logger.Error("current user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user.Public()})
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if len(req.Name) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name must be at most 100 characters"})
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), userID, req.Name)
	if err != nil {
		h.logger.Error("profile update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

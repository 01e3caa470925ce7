package httputil

import (
	"errors"
	"net/http"
	"time"
)

const (
	AccessCookieName  = "egt_access"
	RefreshCookieName = "egt_refresh"
)

// CookieWriter sets the access/refresh cookie pair. Secure is only set in
// production so that local development over plain HTTP keeps working.
type CookieWriter struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (cw *CookieWriter) newCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cw.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetTokenPair sets both auth cookies, each with a max-age matching its
// token's TTL.
func (cw *CookieWriter) SetTokenPair(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, cw.newCookie(AccessCookieName, accessToken, int(cw.AccessTTL.Seconds())))
	http.SetCookie(w, cw.newCookie(RefreshCookieName, refreshToken, int(cw.RefreshTTL.Seconds())))
}

// ClearTokenPair expires both auth cookies.
func (cw *CookieWriter) ClearTokenPair(w http.ResponseWriter) {
	http.SetCookie(w, cw.newCookie(AccessCookieName, "", -1))
	http.SetCookie(w, cw.newCookie(RefreshCookieName, "", -1))
}

// AccessTokenFromRequest extracts the access token from the cookie, falling
// back to a bearer Authorization header.
func AccessTokenFromRequest(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(AccessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:], nil
	}

	return "", errors.New("no access token in cookie or header")
}

// RefreshTokenFromRequest extracts the refresh token cookie.
func RefreshTokenFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", errors.New("no refresh token cookie")
	}
	return cookie.Value, nil
}

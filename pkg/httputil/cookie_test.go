package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordedCookies(t *testing.T, set func(w http.ResponseWriter)) map[string]*http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	set(rec)

	cookies := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	return cookies
}

func TestSetTokenPair(t *testing.T) {
	t.Parallel()

	cw := &CookieWriter{Secure: true, AccessTTL: 900 * time.Second, RefreshTTL: 604800 * time.Second}
	cookies := recordedCookies(t, func(w http.ResponseWriter) {
		cw.SetTokenPair(w, "access-token", "refresh-token")
	})

	access := cookies[AccessCookieName]
	require.NotNil(t, access)
	assert.Equal(t, "access-token", access.Value)
	assert.Equal(t, 900, access.MaxAge)

	refresh := cookies[RefreshCookieName]
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-token", refresh.Value)
	assert.Equal(t, 604800, refresh.MaxAge)

	for _, c := range []*http.Cookie{access, refresh} {
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	}
}

func TestClearTokenPair(t *testing.T) {
	t.Parallel()

	cw := &CookieWriter{Secure: false, AccessTTL: time.Minute, RefreshTTL: time.Hour}
	cookies := recordedCookies(t, cw.ClearTokenPair)

	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		c := cookies[name]
		require.NotNil(t, c)
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
		assert.False(t, c.Secure)
	}
}

func TestAccessTokenFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: "from-cookie"})
	token, err := AccessTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", token)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer from-header")
	token, err = AccessTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "from-header", token)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = AccessTokenFromRequest(r)
	assert.Error(t, err)
}

func TestRefreshTokenFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := RefreshTokenFromRequest(r)
	assert.Error(t, err)

	r.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "refresh"})
	token, err := RefreshTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "refresh", token)
}

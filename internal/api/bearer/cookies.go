// Package bearer owns the cookie-based delivery of the token pair. Tokens
// travel as HTTP-only cookies, never in response bodies.
package bearer

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// AccessCookie carries the short-lived access token.
	AccessCookie = "token"
	// RefreshCookie carries the long-lived refresh token (end users only).
	RefreshCookie = "refreshToken"
)

func newCookie(name, value string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetAccess attaches the access-token cookie to the response.
func SetAccess(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(newCookie(AccessCookie, token, ttl, secure))
}

// SetRefresh attaches the refresh-token cookie to the response.
func SetRefresh(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(newCookie(RefreshCookie, token, ttl, secure))
}

// Clear expires both cookies. This is advisory logout: the tokens
// themselves stay valid until expiry since there is no revocation store.
func Clear(c echo.Context, secure bool) {
	c.SetCookie(newCookie(AccessCookie, "", -time.Second, secure))
	c.SetCookie(newCookie(RefreshCookie, "", -time.Second, secure))
}

// Access reads the access-token cookie, "" when absent.
func Access(c echo.Context) string {
	return read(c, AccessCookie)
}

// Refresh reads the refresh-token cookie, "" when absent.
func Refresh(c echo.Context) string {
	return read(c, RefreshCookie)
}

func read(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

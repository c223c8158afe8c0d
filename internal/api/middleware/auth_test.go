package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/landledger/property-transfer/internal/api/bearer"
	"github.com/landledger/property-transfer/internal/core/domain"
)

// stubTokens resolves tokens from fixed maps: access tokens either verify,
// report expiry, or fail; refresh tokens either mint a new access token or
// end the session.
type stubTokens struct {
	valid   map[string]*domain.Principal
	expired map[string]bool
	refresh map[string]*domain.Principal
}

func (s *stubTokens) IssueAccess(p domain.Principal) (string, error)  { return "access-" + p.ID, nil }
func (s *stubTokens) IssueRefresh(p domain.Principal) (string, error) { return "refresh-" + p.ID, nil }

func (s *stubTokens) VerifyAccess(token string) (*domain.Principal, error) {
	if p, ok := s.valid[token]; ok {
		return p, nil
	}
	if s.expired[token] {
		return nil, domain.ErrTokenExpired
	}
	return nil, domain.ErrTokenInvalid
}

func (s *stubTokens) Refresh(refreshToken string) (string, *domain.Principal, error) {
	p, ok := s.refresh[refreshToken]
	if !ok {
		return "", nil, domain.ErrSessionExpired
	}
	return "access-renewed", p, nil
}

func endUser() *domain.Principal {
	return &domain.Principal{ID: "u1", Username: "alice", Role: domain.RoleEndUser, WalletAddress: "0xA1"}
}

func performAuth(t *testing.T, tokens *stubTokens, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/property-requests", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen echo.Context
	handler := Auth(tokens, time.Hour, false)(func(c echo.Context) error {
		seen = c
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return rec, seen, err
}

func TestAuth_ValidAccessToken(t *testing.T) {
	tokens := &stubTokens{valid: map[string]*domain.Principal{"good": endUser()}}

	_, seen, err := performAuth(t, tokens, &http.Cookie{Name: bearer.AccessCookie, Value: "good"})
	if err != nil {
		t.Fatalf("expected pass-through, got %v", err)
	}
	if seen.Get(CtxPrincipalID) != "u1" || seen.Get(CtxRole) != domain.RoleEndUser || seen.Get(CtxWallet) != "0xA1" {
		t.Fatalf("principal claims not injected into context")
	}
}

func TestAuth_MissingCookie(t *testing.T) {
	_, _, err := performAuth(t, &stubTokens{})

	var httpErr *echo.HTTPError
	if !asHTTPError(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	_, _, err := performAuth(t, &stubTokens{}, &http.Cookie{Name: bearer.AccessCookie, Value: "garbage"})

	var httpErr *echo.HTTPError
	if !asHTTPError(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_ExpiredWithRefreshIsRenewedSilently(t *testing.T) {
	tokens := &stubTokens{
		expired: map[string]bool{"stale": true},
		refresh: map[string]*domain.Principal{"still-good": endUser()},
	}

	rec, seen, err := performAuth(t, tokens,
		&http.Cookie{Name: bearer.AccessCookie, Value: "stale"},
		&http.Cookie{Name: bearer.RefreshCookie, Value: "still-good"},
	)
	if err != nil {
		t.Fatalf("silent renewal must let the call continue, got %v", err)
	}
	if seen.Get(CtxPrincipalID) != "u1" {
		t.Fatalf("refreshed principal not injected into context")
	}

	// The renewed access token rides back on the same response.
	var renewed bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == bearer.AccessCookie && ck.Value == "access-renewed" {
			renewed = true
		}
	}
	if !renewed {
		t.Fatalf("expected a fresh access cookie on the response")
	}
}

func TestAuth_ExpiredWithoutRefresh(t *testing.T) {
	tokens := &stubTokens{expired: map[string]bool{"stale": true}}

	_, _, err := performAuth(t, tokens, &http.Cookie{Name: bearer.AccessCookie, Value: "stale"})

	var httpErr *echo.HTTPError
	if !asHTTPError(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_ExpiredWithBadRefreshEndsSession(t *testing.T) {
	tokens := &stubTokens{expired: map[string]bool{"stale": true}}

	_, _, err := performAuth(t, tokens,
		&http.Cookie{Name: bearer.AccessCookie, Value: "stale"},
		&http.Cookie{Name: bearer.RefreshCookie, Value: "forged"},
	)

	var httpErr *echo.HTTPError
	if !asHTTPError(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if msg, _ := httpErr.Message.(string); !strings.Contains(msg, "session expired") {
		t.Fatalf("expected session-expired message, got %v", httpErr.Message)
	}
}

func asHTTPError(err error, target **echo.HTTPError) bool {
	he, ok := err.(*echo.HTTPError)
	if ok {
		*target = he
	}
	return ok
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/landledger/property-transfer/internal/core/domain"
)

func performRBAC(t *testing.T, role string, allowed ...string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/property-requests/REQ1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(CtxRole, role)
	}

	handler := RBAC(allowed...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec.Code
}

func TestRBAC_AllowsListedRoles(t *testing.T) {
	for _, role := range []string{domain.RoleAdmin, domain.RoleManager} {
		if code := performRBAC(t, role, domain.RoleAdmin, domain.RoleManager); code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", role, code)
		}
	}
}

func TestRBAC_RejectsOtherRoles(t *testing.T) {
	if code := performRBAC(t, domain.RoleEndUser, domain.RoleAdmin, domain.RoleManager); code != http.StatusForbidden {
		t.Fatalf("expected 403 for end_user, got %d", code)
	}
	if code := performRBAC(t, domain.RoleEmployee, domain.RoleAdmin, domain.RoleManager); code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee, got %d", code)
	}
}

func TestRBAC_RejectsMissingRole(t *testing.T) {
	if code := performRBAC(t, "", domain.RoleAdmin); code != http.StatusForbidden {
		t.Fatalf("expected 403 when no role is set, got %d", code)
	}
}

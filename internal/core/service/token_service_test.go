package service

import (
	"errors"
	"testing"
	"time"

	"github.com/landledger/property-transfer/internal/core/domain"
)

func testPrincipal() domain.Principal {
	return domain.Principal{
		ID:            "user_1",
		Username:      "alice",
		Role:          domain.RoleEndUser,
		WalletAddress: "0xabc",
	}
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)

	token, err := svc.IssueAccess(testPrincipal())
	if err != nil {
		t.Fatalf("IssueAccess returned error: %v", err)
	}

	p, err := svc.VerifyAccess(token)
	if err != nil {
		t.Fatalf("VerifyAccess returned error: %v", err)
	}
	if p.ID != "user_1" || p.Username != "alice" || p.Role != domain.RoleEndUser || p.WalletAddress != "0xabc" {
		t.Fatalf("claims did not survive the round trip: %+v", p)
	}
}

func TestTokenService_ExpiredAccessReportedDistinctly(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Nanosecond, time.Hour)

	token, err := svc.IssueAccess(testPrincipal())
	if err != nil {
		t.Fatalf("IssueAccess returned error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := svc.VerifyAccess(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_ForgedTokenInvalid(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)
	other := NewTokenService("wrong-secret", "refresh-secret", time.Hour, time.Hour)

	token, err := other.IssueAccess(testPrincipal())
	if err != nil {
		t.Fatalf("IssueAccess returned error: %v", err)
	}

	if _, err := svc.VerifyAccess(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_RefreshTokenNotValidAsAccess(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)

	refresh, err := svc.IssueRefresh(testPrincipal())
	if err != nil {
		t.Fatalf("IssueRefresh returned error: %v", err)
	}

	if _, err := svc.VerifyAccess(refresh); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for refresh token on access path, got %v", err)
	}
}

func TestTokenService_RefreshMintsAccessOnly(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)

	refresh, err := svc.IssueRefresh(testPrincipal())
	if err != nil {
		t.Fatalf("IssueRefresh returned error: %v", err)
	}

	access, p, err := svc.Refresh(refresh)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if p.ID != "user_1" || p.WalletAddress != "0xabc" {
		t.Fatalf("unexpected principal from refresh: %+v", p)
	}
	if _, err := svc.VerifyAccess(access); err != nil {
		t.Fatalf("refreshed access token does not verify: %v", err)
	}
	// Single hop only: the new access token cannot be used to refresh again.
	if _, _, err := svc.Refresh(access); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired when refreshing with an access token, got %v", err)
	}
}

func TestTokenService_ExpiredRefreshEndsSession(t *testing.T) {
	short := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Nanosecond)

	refresh, err := short.IssueRefresh(testPrincipal())
	if err != nil {
		t.Fatalf("IssueRefresh returned error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, _, err := short.Refresh(refresh); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

package ports

import "github.com/landledger/property-transfer/internal/core/domain"

// TokenService issues and verifies the bearer artifacts. It is stateless
// beyond the signing secrets; verification is purely computational and safe
// for unbounded concurrency.
type TokenService interface {
	// IssueAccess mints a short-lived access token for the principal.
	IssueAccess(p domain.Principal) (string, error)
	// IssueRefresh mints a long-lived refresh token. Only end-user
	// sessions carry one; other classes re-authenticate.
	IssueRefresh(p domain.Principal) (string, error)
	// VerifyAccess validates an access token and recovers the principal
	// snapshot. Fails with domain.ErrTokenExpired when the token is
	// well-formed but past expiry, domain.ErrTokenInvalid otherwise.
	VerifyAccess(token string) (*domain.Principal, error)
	// Refresh performs the silent single-hop renewal: it validates the
	// refresh token and mints a fresh access token bound to the same
	// claims. The refresh token itself is never renewed. Fails with
	// domain.ErrSessionExpired on any refresh-token problem.
	Refresh(refreshToken string) (string, *domain.Principal, error)
}

package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/landledger/property-transfer/internal/api/bearer"
	"github.com/landledger/property-transfer/internal/api/metrics"
	"github.com/landledger/property-transfer/internal/core/domain"
	"github.com/landledger/property-transfer/internal/core/ports"
)

// Context keys populated by Auth.
const (
	CtxPrincipalID = "principal_id"
	CtxUsername    = "username"
	CtxRole        = "role"
	CtxWallet      = "wallet_address"
)

// Auth validates the access-token cookie and injects the principal
// snapshot into context. When the access token is expired and a refresh
// cookie is present, it performs the silent single-hop renewal: a fresh
// access token is set on the response and the call continues as
// authorized. Refresh failure ends the session.
func Auth(tokens ports.TokenService, accessTTL time.Duration, secureCookies bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			access := bearer.Access(c)
			if access == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "no token provided, unauthorized")
			}

			p, err := tokens.VerifyAccess(access)
			if err != nil {
				if !errors.Is(err, domain.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired or invalid, please login again")
				}

				refresh := bearer.Refresh(c)
				if refresh == "" {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired or invalid, please login again")
				}

				newAccess, refreshed, rErr := tokens.Refresh(refresh)
				if rErr != nil {
					metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "session expired, please login again")
				}
				metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
				bearer.SetAccess(c, newAccess, accessTTL, secureCookies)
				p = refreshed
			}

			c.Set(CtxPrincipalID, p.ID)
			c.Set(CtxUsername, p.Username)
			c.Set(CtxRole, p.Role)
			c.Set(CtxWallet, p.WalletAddress)

			return next(c)
		}
	}
}

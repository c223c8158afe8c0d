package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/landledger/property-transfer/internal/api/middleware"
	"github.com/landledger/property-transfer/internal/core/domain"
)

// ctxWallet extracts the caller's wallet address from the claims injected
// by the Auth middleware. End-user endpoints require it: without a wallet
// the token is structurally valid but operationally unusable here.
func ctxWallet(c echo.Context) (string, error) {
	role, _ := c.Get(middleware.CtxRole).(string)
	if role == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	wallet, _ := c.Get(middleware.CtxWallet).(string)
	if role == domain.RoleEndUser && wallet == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing wallet identity")
	}
	return wallet, nil
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/landledger/property-transfer/internal/core/ports"
)

// UserHandler exposes end-user lookups that need no authentication.
type UserHandler struct {
	auth ports.AuthService
}

func NewUserHandler(auth ports.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// CheckWallet reports whether a wallet address belongs to a registered end
// user. Used by clients to validate counterpart addresses before creating
// a request.
//
// @Summary      Check whether a wallet address is registered
// @Tags         users
// @Produce      json
// @Param        address  path  string  true  "Wallet address"
// @Success      200  {object}  map[string]bool
// @Router       /users/check-wallet/{address} [get]
func (h *UserHandler) CheckWallet(c echo.Context) error {
	exists, err := h.auth.WalletRegistered(c.Request().Context(), c.Param("address"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"exists": exists})
}

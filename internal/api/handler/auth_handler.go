package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/landledger/property-transfer/internal/api/bearer"
	"github.com/landledger/property-transfer/internal/api/metrics"
	"github.com/landledger/property-transfer/internal/core/domain"
	"github.com/landledger/property-transfer/internal/core/ports"
)

// CookieOptions carries the token lifetimes and the deployment-gated
// Secure flag for the bearer cookies.
type CookieOptions struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Secure     bool
}

type AuthHandler struct {
	auth    ports.AuthService
	cookies CookieOptions
}

func NewAuthHandler(auth ports.AuthService, cookies CookieOptions) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

type signupRequest struct {
	Username      string `json:"username"        validate:"required,min=3"`
	Password      string `json:"password"        validate:"required,min=6"`
	WalletAddress string `json:"wallet_address"  validate:"required"`
	NationalID    string `json:"national_id"     validate:"required"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string            `json:"message"`
	User    *domain.Principal `json:"user,omitempty"`
}

// Signup registers a new end user and logs them in immediately.
//
// @Summary      Register a new end user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.auth.Signup(c.Request().Context(), ports.SignupInput{
		Username:      req.Username,
		Password:      req.Password,
		WalletAddress: req.WalletAddress,
		NationalID:    req.NationalID,
	})
	if err != nil {
		return err
	}

	h.setSessionCookies(c, session)
	return c.JSON(http.StatusCreated, authResponse{Message: "Signup successful", User: &session.Principal})
}

// Login authenticates any of the four principal classes.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	session, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure", "none").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success", session.Principal.Role).Inc()

	h.setSessionCookies(c, session)
	return c.JSON(http.StatusOK, authResponse{Message: "Login successful", User: &session.Principal})
}

// Logout clears the bearer cookies. Advisory only: issued tokens remain
// valid until expiry.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	bearer.Clear(c, h.cookies.Secure)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) setSessionCookies(c echo.Context, session *ports.Session) {
	bearer.SetAccess(c, session.AccessToken, h.cookies.AccessTTL, h.cookies.Secure)
	if session.RefreshToken != "" {
		bearer.SetRefresh(c, session.RefreshToken, h.cookies.RefreshTTL, h.cookies.Secure)
	}
}

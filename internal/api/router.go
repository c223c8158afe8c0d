package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/landledger/property-transfer/internal/api/handler"
	"github.com/landledger/property-transfer/internal/api/middleware"
	"github.com/landledger/property-transfer/internal/core/domain"
	"github.com/landledger/property-transfer/internal/core/ports"
	"github.com/landledger/property-transfer/internal/infrastructure/config"
)

// Dependencies bundles everything the HTTP layer needs. Services are
// constructed in main so the mint pipeline can share the same instances.
type Dependencies struct {
	Config   *config.Config
	Log      zerolog.Logger
	Tokens   ports.TokenService
	Auth     ports.AuthService
	Requests ports.RequestService
	Roster   ports.RosterService
	Stats    ports.StatsService
	Blobs    ports.BlobStore
	Mongo    *mongo.Database
	Redis    *redis.Client
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log, !deps.Config.Production())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("property"))

	cookies := handler.CookieOptions{
		AccessTTL:  deps.Config.Auth.AccessTTL,
		RefreshTTL: deps.Config.Auth.RefreshTTL,
		Secure:     deps.Config.Production(),
	}

	authHandler := handler.NewAuthHandler(deps.Auth, cookies)
	requestHandler := handler.NewRequestHandler(deps.Requests, deps.Blobs)
	rosterHandler := handler.NewRosterHandler(deps.Roster)
	userHandler := handler.NewUserHandler(deps.Auth)
	adminHandler := handler.NewAdminHandler(deps.Stats)

	authRequired := middleware.Auth(deps.Tokens, deps.Config.Auth.AccessTTL, deps.Config.Production())
	staffOnly := middleware.RBAC(domain.RoleAdmin, domain.RoleManager)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	endUserOnly := middleware.RBAC(domain.RoleEndUser)

	// --- Auth ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authRequired)

	// --- Property requests ---
	requests := e.Group("/property-requests", authRequired)
	requests.POST("", requestHandler.Create, endUserOnly)
	requests.GET("", requestHandler.ListAll)
	requests.GET("/my", requestHandler.ListMine, endUserOnly)
	requests.GET("/owned", requestHandler.ListOwned, endUserOnly)
	requests.PATCH("/:id", requestHandler.UpdateStatus, staffOnly)

	// --- Wallet lookup (pre-signup flows need this unauthenticated) ---
	e.GET("/users/check-wallet/:address", userHandler.CheckWallet)

	// --- Staff rosters ---
	managers := e.Group("/managers", authRequired, staffOnly)
	managers.GET("", rosterHandler.ListManagers)
	managers.POST("", rosterHandler.AddManager)
	managers.DELETE("/:id", rosterHandler.RemoveManager)

	employees := e.Group("/employees", authRequired, adminOnly)
	employees.GET("", rosterHandler.ListEmployees)
	employees.POST("", rosterHandler.AddEmployee)
	employees.DELETE("/:id", rosterHandler.RemoveEmployee)

	// --- Admin ---
	e.GET("/admin/stats", adminHandler.Stats, authRequired, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

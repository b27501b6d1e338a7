package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/adverts/adverts-api/internal/api/handler"
	"github.com/adverts/adverts-api/internal/api/middleware"
	"github.com/adverts/adverts-api/internal/core/authz"
	"github.com/adverts/adverts-api/internal/core/ports"
	"github.com/adverts/adverts-api/internal/infrastructure/http/handlers"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Logger        zerolog.Logger
	AuthService   ports.AuthService
	Tokens        ports.TokenValidator
	AdvertService ports.AdvertService
	// Readiness lists the dependencies /health/ready pings, by name.
	Readiness map[string]ports.Pinger
	// EnableSwagger exposes /swagger/*; development only.
	EnableSwagger bool
	// Metrics receives the HTTP request collectors and backs /metrics.
	// Nil means the default prometheus registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORS())
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "adverts",
		Registerer: registerer,
	}))

	// --- Operational routes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	if d.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Auth ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	e.POST("/login", authHandler.Login, middleware.RBAC(authz.OpLogin))

	// --- Adverts ---
	authMW := middleware.Auth(d.Tokens)
	guard := func(op authz.Operation) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{authMW, middleware.RBAC(op)}
	}

	adverts := handler.NewAdvertHandler(d.AdvertService)
	e.POST("/adverts", adverts.Create, guard(authz.OpCreateAdvert)...)
	e.GET("/adverts", adverts.List, guard(authz.OpListAdverts)...)
	e.GET("/adverts/:id", adverts.Get, guard(authz.OpGetAdvert)...)
	e.PUT("/adverts", adverts.Update, guard(authz.OpUpdateAdvert)...)
	e.PATCH("/adverts/:id", adverts.Patch, guard(authz.OpPatchAdvert)...)
	e.DELETE("/adverts/:id", adverts.Delete, guard(authz.OpDeleteAdvert)...)

	return e
}

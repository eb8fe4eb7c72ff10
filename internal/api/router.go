package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/catalog-gateway/docs"
	"github.com/99minutos/catalog-gateway/internal/api/handler"
	"github.com/99minutos/catalog-gateway/internal/api/middleware"
	"github.com/99minutos/catalog-gateway/internal/core/authz"
	"github.com/99minutos/catalog-gateway/internal/core/ports"
	"github.com/99minutos/catalog-gateway/pkg/logger"
)

// Deps is everything the HTTP layer needs. The caller owns construction;
// NewRouter only wires.
type Deps struct {
	Logger zerolog.Logger

	Tokens     ports.TokenCodec
	Identities ports.IdentityLookup
	Audit      ports.AuditLog
	// Policy defaults to authz.DefaultPolicy().
	Policy *authz.Policy

	AuthService    ports.AuthService
	ProductService ports.ProductService

	HealthChecks []handler.DependencyCheck

	// Registry receives the HTTP metrics. Nil means the default Prometheus
	// registry, which also carries the gateway's own metrics.
	Registry *prometheus.Registry
}

// NewRouter builds the Echo instance with the full request pipeline:
// recover, request id, access log, metrics, authentication, authorization.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.StdLogger = logger.StdLogger(deps.Logger, "http")
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	policy := deps.Policy
	if policy == nil {
		policy = authz.DefaultPolicy()
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Security pipeline ---
	e.Use(middleware.Authenticate(middleware.AuthConfig{
		Tokens:     deps.Tokens,
		Identities: deps.Identities,
		Audit:      deps.Audit,
		Logger:     deps.Logger,
	}))
	e.Use(middleware.Authorize(policy, deps.Audit, deps.Logger))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me)

	// --- Products ---
	productHandler := handler.NewProductHandler(deps.ProductService, deps.Logger)
	products := e.Group("/products")
	products.GET("", productHandler.List)
	products.GET("/stream", productHandler.Stream)
	products.GET("/search", productHandler.Search)
	products.GET("/under-price", productHandler.UnderPrice)
	products.GET("/:id", productHandler.Get)
	products.POST("", productHandler.Create)
	products.PUT("/:id", productHandler.Update)
	products.DELETE("/:id", productHandler.Delete)

	// --- Operations (public per policy) ---
	healthHandler := handler.NewHealthHandler(deps.HealthChecks...)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			var evt *zerolog.Event
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Error != nil:
				evt = log.Warn().Err(v.Error)
			default:
				evt = log.Info()
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/core/authz"
	"github.com/99minutos/catalog-gateway/internal/core/domain"
	"github.com/99minutos/catalog-gateway/internal/core/ports"
	"github.com/99minutos/catalog-gateway/internal/core/service"
	"github.com/99minutos/catalog-gateway/internal/pkg/metrics"
)

// Authorize enforces policy on every request, after Authenticate. A denied
// anonymous request gets 401; a principal without the required role gets 403.
func Authorize(policy *authz.Policy, audit ports.AuditLog, log zerolog.Logger) echo.MiddlewareFunc {
	if audit == nil {
		audit = service.NopAuditLog{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			principal, _ := domain.PrincipalFrom(req.Context())

			decision := policy.Evaluate(req.Method, req.URL.Path, principal)
			if decision.Allowed {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("allowed").Inc()
				return next(c)
			}

			event := domain.AuthEvent{
				Type:   domain.EventAccessDenied,
				Reason: decision.Rule,
				Method: req.Method,
				Path:   req.URL.Path,
			}
			if principal != nil {
				event.Username = principal.Username
			}
			audit.Record(event)

			if errors.Is(decision.Err, domain.ErrInsufficientRole) {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("forbidden").Inc()
				log.Info().
					Str("username", event.Username).
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Str("rule", decision.Rule).
					Msg("access denied")
				return echo.NewHTTPError(http.StatusForbidden, "forbidden").SetInternal(decision.Err)
			}

			metrics.AuthorizationDecisionsTotal.WithLabelValues("unauthenticated").Inc()
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized").SetInternal(decision.Err)
		}
	}
}

package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
	"github.com/99minutos/catalog-gateway/internal/core/ports"
	"github.com/99minutos/catalog-gateway/internal/core/service"
	"github.com/99minutos/catalog-gateway/internal/pkg/metrics"
)

// PrincipalKey is the echo.Context key holding the *domain.Principal of an
// authenticated request.
const PrincipalKey = "principal"

// DefaultPublicPaths are passed through without looking at the
// Authorization header. /auth/me is deliberately absent.
var DefaultPublicPaths = []string{
	"/auth/register",
	"/auth/login",
	"/health",
	"/metrics",
	"/swagger",
}

// AuthConfig configures Authenticate.
type AuthConfig struct {
	Tokens     ports.TokenCodec
	Identities ports.IdentityLookup
	Audit      ports.AuditLog
	Logger     zerolog.Logger
	// PublicPaths are path prefixes that skip token inspection.
	// Defaults to DefaultPublicPaths.
	PublicPaths []string
}

// Authenticate resolves a bearer token into a principal.
//
// Requests without a bearer token continue anonymously and are left to
// Authorize. A token that is present but fails verification, names an
// unknown or disabled identity, or cannot be resolved because storage failed
// ends the request with 401. The principal is attached to the request
// context only after every check passed.
func Authenticate(cfg AuthConfig) echo.MiddlewareFunc {
	public := cfg.PublicPaths
	if public == nil {
		public = DefaultPublicPaths
	}
	audit := cfg.Audit
	if audit == nil {
		audit = service.NopAuditLog{}
	}
	log := cfg.Logger

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if isPublicPath(req.URL.Path, public) {
				metrics.AuthenticationDecisionsTotal.WithLabelValues("pass_through").Inc()
				return next(c)
			}

			token, ok := bearerToken(req.Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthenticationDecisionsTotal.WithLabelValues("pass_through").Inc()
				return next(c)
			}

			reject := func(username string, cause error) error {
				metrics.AuthenticationDecisionsTotal.WithLabelValues("rejected").Inc()
				audit.Record(domain.AuthEvent{
					Type:     domain.EventTokenRejected,
					Username: username,
					Reason:   cause.Error(),
					Method:   req.Method,
					Path:     req.URL.Path,
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized").SetInternal(cause)
			}

			subject, err := cfg.Tokens.Verify(token)
			if err != nil {
				log.Debug().Err(err).Str("path", req.URL.Path).Msg("bearer token rejected")
				return reject("", err)
			}

			start := time.Now()
			identity, err := cfg.Identities.FindByUsername(req.Context(), subject)
			metrics.IdentityLookupDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				if errors.Is(err, domain.ErrIdentityNotFound) {
					return reject(subject, domain.ErrUnknownSubject)
				}
				log.Error().Err(err).Str("username", subject).Msg("identity lookup failed")
				return reject(subject, err)
			}
			if !identity.Enabled {
				return reject(subject, domain.ErrAccountDisabled)
			}

			ctx := domain.WithPrincipal(req.Context(), domain.Principal{
				Username: identity.Username,
				Roles:    identity.RoleSet(),
			})
			c.SetRequest(req.WithContext(ctx))
			if p, ok := domain.PrincipalFrom(ctx); ok {
				c.Set(PrincipalKey, p)
			}

			metrics.AuthenticationDecisionsTotal.WithLabelValues("authenticated").Inc()
			return next(c)
		}
	}
}

// bearerToken extracts the credential from "Bearer <token>". The scheme is
// case-insensitive.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func isPublicPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

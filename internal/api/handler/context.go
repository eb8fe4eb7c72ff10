package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

// principal returns the caller attached by the authentication middleware.
// Handlers behind an authenticated rule can rely on it being present; the
// error is returned for routes mounted without the gate.
func principal(c echo.Context) (*domain.Principal, error) {
	p, ok := domain.PrincipalFrom(c.Request().Context())
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/api/handler"
	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

// NewHTTPErrorHandler returns the single place where errors become
// responses. Every error body is {"message": "..."}; causes of unexpected
// errors are logged and never sent to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.MessageResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error()
	}

	var flowErr *domain.FlowError
	if errors.As(err, &flowErr) {
		logUnexpected(log, c, err)
		return http.StatusInternalServerError, flowErr.Flow + " failed"
	}

	switch {
	case domain.IsTokenError(err),
		errors.Is(err, domain.ErrUnknownSubject),
		errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusBadRequest, "Username already exists"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already exists"
	case errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusBadRequest, "password must be at most 72 bytes"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrAccountDisabled):
		return http.StatusForbidden, "Account is disabled"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "Product not found"
	}

	logUnexpected(log, c, err)
	return http.StatusInternalServerError, "internal server error"
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}

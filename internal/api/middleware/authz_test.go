package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/core/authz"
	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

func authorizeRequest(t *testing.T, method, path string, p *domain.Principal, audit *captureAudit) (int, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	if p != nil {
		req = req.WithContext(domain.WithPrincipal(context.Background(), *p))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := Authorize(authz.DefaultPolicy(), audit, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusNoContent)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code, called
}

func TestAuthorize(t *testing.T) {
	user := &domain.Principal{Username: "bob", Roles: []string{domain.RoleUser}}
	admin := &domain.Principal{Username: "alice", Roles: []string{domain.RoleUser, domain.RoleAdmin}}

	cases := []struct {
		name      string
		method    string
		path      string
		principal *domain.Principal
		wantCode  int
		wantNext  bool
	}{
		{"anonymous login", http.MethodPost, "/auth/login", nil, http.StatusNoContent, true},
		{"anonymous list", http.MethodGet, "/products", nil, http.StatusUnauthorized, false},
		{"user list", http.MethodGet, "/products", user, http.StatusNoContent, true},
		{"user create", http.MethodPost, "/products", user, http.StatusNoContent, true},
		{"user delete", http.MethodDelete, "/products/7", user, http.StatusForbidden, false},
		{"admin delete", http.MethodDelete, "/products/7", admin, http.StatusNoContent, true},
		{"anonymous delete", http.MethodDelete, "/products/7", nil, http.StatusUnauthorized, false},
		{"anonymous me", http.MethodGet, "/auth/me", nil, http.StatusUnauthorized, false},
		{"unlisted path", http.MethodGet, "/orders", nil, http.StatusUnauthorized, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			audit := &captureAudit{}
			code, called := authorizeRequest(t, tc.method, tc.path, tc.principal, audit)
			if code != tc.wantCode || called != tc.wantNext {
				t.Fatalf("got code=%d next=%v, want code=%d next=%v", code, called, tc.wantCode, tc.wantNext)
			}
			if !tc.wantNext && audit.count() != 1 {
				t.Fatalf("expected one access_denied event, got %d", audit.count())
			}
		})
	}
}

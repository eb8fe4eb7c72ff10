package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, email, password string) (*domain.Identity, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.Identity, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, email, password string) (*domain.Identity, error) {
	return s.registerFn(ctx, username, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.Identity, error) {
	return s.loginFn(ctx, username, password)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, username, email, password string) (*domain.Identity, error) {
			if username != "alice" || email != "alice@example.com" || password != "pass123" {
				t.Fatalf("unexpected args: %s %s %s", username, email, password)
			}
			return &domain.Identity{Username: username, Email: email, Roles: domain.RoleUser, Enabled: true}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonRequest(e, http.MethodPost, "/auth/register", `{"username":"alice","email":"alice@example.com","password":"pass123"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" || resp["message"] != "User registered successfully" {
		t.Fatalf("unexpected payload: %v", resp)
	}
	if _, ok := resp["token"]; ok {
		t.Fatalf("registration must not issue a token")
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (*domain.Identity, error) {
			t.Fatalf("service must not be called for invalid input")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	bodies := []string{
		`{"username":"al","email":"alice@example.com","password":"pass123"}`,
		`{"username":"alice","email":"not-an-email","password":"pass123"}`,
		`{"username":"alice","email":"alice@example.com","password":"123"}`,
		`{"email":"alice@example.com","password":"pass123"}`,
	}
	for _, body := range bodies {
		c, _ := jsonRequest(e, http.MethodPost, "/auth/register", body)
		var ve ValidationError
		if err := h.Register(c); !errors.As(err, &ve) {
			t.Fatalf("body %s: expected ValidationError, got %v", body, err)
		}
	}
}

func TestAuthHandler_Register_ConflictIsReturned(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (*domain.Identity, error) {
			return nil, domain.ErrDuplicateUsername
		},
	}
	h := NewAuthHandler(stub)

	c, _ := jsonRequest(e, http.MethodPost, "/auth/register", `{"username":"bob","email":"bob@example.com","password":"pass123"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestAuthHandler_Register_BadJSON(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, _ := jsonRequest(e, http.MethodPost, "/auth/register", `{"username":`)
	var he *echo.HTTPError
	if err := h.Register(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (string, *domain.Identity, error) {
			return "signed.jwt.token", &domain.Identity{Username: username}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonRequest(e, http.MethodPost, "/auth/login", `{"username":"carol","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["token"] != "signed.jwt.token" || resp["username"] != "carol" || resp["message"] == "" {
		t.Fatalf("unexpected payload: %v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (string, *domain.Identity, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := jsonRequest(e, http.MethodPost, "/auth/login", `{"username":"dave","password":"badpass"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(domain.WithPrincipal(req.Context(), domain.Principal{Username: "alice", Roles: []string{"USER", "ADMIN"}}))
	rec := httptest.NewRecorder()
	if err := h.Me(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp meResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Username != "alice" || len(resp.Roles) != 2 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Me_WithoutPrincipal(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if err := h.Me(e.NewContext(req, httptest.NewRecorder())); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
	"github.com/99minutos/catalog-gateway/internal/core/service"
	"github.com/99minutos/catalog-gateway/internal/infrastructure/db/memory"
)

func newProductHandler(t *testing.T) *ProductHandler {
	t.Helper()
	store := memory.NewProductStore()
	store.Put(domain.Product{ID: 1, Name: "Laptop", Price: 1000, Quantity: 3})
	store.Put(domain.Product{ID: 2, Name: "Mouse", Price: 25, Quantity: 40})
	return NewProductHandler(service.NewProductService(store, zerolog.Nop()), zerolog.Nop())
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func TestProductHandler_List(t *testing.T) {
	e := newEcho()
	h := newProductHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/products", nil), rec)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &products); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
}

func TestProductHandler_Stream(t *testing.T) {
	e := newEcho()
	h := newProductHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/products/stream", nil), rec)
	if err := h.Stream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	events := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %q", len(events), rec.Body.String())
	}
	for _, ev := range events {
		if !strings.HasPrefix(ev, "data: {") {
			t.Fatalf("malformed event %q", ev)
		}
	}
}

func TestProductHandler_GetAndNotFound(t *testing.T) {
	e := newEcho()
	h := newProductHandler(t)

	rec := httptest.NewRecorder()
	c := withID(e.NewContext(httptest.NewRequest(http.MethodGet, "/products/1", nil), rec), "1")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c = withID(e.NewContext(httptest.NewRequest(http.MethodGet, "/products/99", nil), httptest.NewRecorder()), "99")
	if err := h.Get(c); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	c = withID(e.NewContext(httptest.NewRequest(http.MethodGet, "/products/abc", nil), httptest.NewRecorder()), "abc")
	var he *echo.HTTPError
	if err := h.Get(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %v", err)
	}
}

func TestProductHandler_CreateValidation(t *testing.T) {
	e := newEcho()
	h := newProductHandler(t)

	c, rec := jsonRequest(e, http.MethodPost, "/products", `{"name":"Keyboard","price":80,"quantity":5}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	for _, body := range []string{
		`{"price":80}`,
		`{"name":"Free","price":0}`,
		`{"name":"Neg","price":5,"quantity":-1}`,
	} {
		c, _ := jsonRequest(e, http.MethodPost, "/products", body)
		var ve ValidationError
		if err := h.Create(c); !errors.As(err, &ve) {
			t.Fatalf("body %s: expected ValidationError, got %v", body, err)
		}
	}
}

func TestProductHandler_UpdateAndDelete(t *testing.T) {
	e := newEcho()
	h := newProductHandler(t)

	c, rec := jsonRequest(e, http.MethodPut, "/products/2", `{"name":"Wireless Mouse","price":30,"quantity":10}`)
	if err := h.Update(withID(c, "2")); err != nil {
		t.Fatalf("update error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Wireless Mouse") {
		t.Fatalf("unexpected update body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = withID(e.NewContext(httptest.NewRequest(http.MethodDelete, "/products/2", nil), rec), "2")
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c = withID(e.NewContext(httptest.NewRequest(http.MethodDelete, "/products/2", nil), httptest.NewRecorder()), "2")
	if err := h.Delete(c); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on second delete, got %v", err)
	}
}

func TestProductHandler_QueryEndpoints(t *testing.T) {
	e := newEcho()
	h := newProductHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/products/search?name=LAP", nil), rec)
	if err := h.Search(c); err != nil {
		t.Fatalf("search error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Laptop") || strings.Contains(rec.Body.String(), "Mouse") {
		t.Fatalf("unexpected search body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/products/under-price?price=100", nil), rec)
	if err := h.UnderPrice(c); err != nil {
		t.Fatalf("under-price error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Mouse") || strings.Contains(rec.Body.String(), "Laptop") {
		t.Fatalf("unexpected under-price body: %s", rec.Body.String())
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/products/under-price?price=cheap", nil), httptest.NewRecorder())
	var he *echo.HTTPError
	if err := h.UnderPrice(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad price, got %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/products/search", nil), httptest.NewRecorder())
	if err := h.Search(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %v", err)
	}
}

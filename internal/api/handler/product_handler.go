package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
	"github.com/99minutos/catalog-gateway/internal/core/ports"
)

// ProductHandler exposes the product catalog. Authorization has already run
// by the time any of these handlers is reached.
type ProductHandler struct {
	service ports.ProductService
	log     zerolog.Logger
}

func NewProductHandler(service ports.ProductService, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{service: service, log: log}
}

// List returns every product ordered by id.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Product
// @Failure      401  {object}  MessageResponse
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.service.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Stream sends the catalog as server-sent events, one product per event.
//
// @Summary      Stream products
// @Tags         products
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {object}  domain.Product
// @Failure      401  {object}  MessageResponse
// @Router       /products/stream [get]
func (h *ProductHandler) Stream(c echo.Context) error {
	res := c.Response()

	// Long catalogs outlive the server's WriteTimeout.
	if err := http.NewResponseController(res.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug().Err(err).Msg("could not clear write deadline for stream")
	}

	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	sent := 0
	err := h.service.StreamProducts(c.Request().Context(), func(p *domain.Product) error {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "data: %s\n\n", data); err != nil {
			return err
		}
		res.Flush()
		sent++
		return nil
	})
	if err != nil {
		// Headers are gone; all that is left is to stop and log.
		h.log.Warn().Err(err).Int("sent", sent).Msg("product stream aborted")
	}
	return nil
}

// Get returns a single product.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      400  {object}  MessageResponse
// @Failure      401  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	p, err := h.service.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create adds a product. Any authenticated caller may create.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  MessageResponse
// @Failure      401   {object}  MessageResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	input, err := bindProduct(c)
	if err != nil {
		return err
	}

	created, err := h.service.CreateProduct(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Update replaces a product. ADMIN only.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Product id"
// @Param        body  body      productRequest  true  "Product"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  MessageResponse
// @Failure      401   {object}  MessageResponse
// @Failure      403   {object}  MessageResponse
// @Failure      404   {object}  MessageResponse
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	input, err := bindProduct(c)
	if err != nil {
		return err
	}

	updated, err := h.service.UpdateProduct(c.Request().Context(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a product. ADMIN only.
//
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  int  true  "Product id"
// @Success      204
// @Failure      401  {object}  MessageResponse
// @Failure      403  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Search finds products whose name contains the query, ignoring case.
//
// @Summary      Search products by name
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        name  query     string  true  "Name fragment"
// @Success      200   {array}   domain.Product
// @Failure      400   {object}  MessageResponse
// @Failure      401   {object}  MessageResponse
// @Router       /products/search [get]
func (h *ProductHandler) Search(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	products, err := h.service.SearchByName(c.Request().Context(), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// UnderPrice lists products strictly cheaper than price.
//
// @Summary      Products under a price
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        price  query     number  true  "Exclusive upper bound"
// @Success      200    {array}   domain.Product
// @Failure      400    {object}  MessageResponse
// @Failure      401    {object}  MessageResponse
// @Router       /products/under-price [get]
func (h *ProductHandler) UnderPrice(c echo.Context) error {
	price, err := strconv.ParseFloat(c.QueryParam("price"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "price must be a number")
	}

	products, err := h.service.ListUnderPrice(c.Request().Context(), price)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func productID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	return id, nil
}

func bindProduct(c echo.Context) (ports.ProductInput, error) {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return ports.ProductInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.ProductInput{}, err
	}
	return ports.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}, nil
}

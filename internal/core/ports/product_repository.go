package ports

import (
	"context"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	NameContains string   // case-insensitive substring of name
	PriceBelow   *float64 // price strictly below
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	// Stream calls fn once per matching product, in id order, without
	// buffering the full result. Iteration stops at the first error from fn.
	Stream(ctx context.Context, filter ProductFilter, fn func(*domain.Product) error) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	// Update replaces the mutable fields of an existing product.
	// Returns domain.ErrProductNotFound when absent.
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	// Delete returns domain.ErrProductNotFound when absent.
	Delete(ctx context.Context, id int64) error
}

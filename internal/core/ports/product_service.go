package ports

import (
	"context"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
}

// ProductService defines use-case operations for the product catalog.
type ProductService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	StreamProducts(ctx context.Context, fn func(*domain.Product) error) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	SearchByName(ctx context.Context, name string) ([]*domain.Product, error)
	ListUnderPrice(ctx context.Context, price float64) ([]*domain.Product, error)
}

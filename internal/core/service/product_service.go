package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
	"github.com/99minutos/catalog-gateway/internal/core/ports"
	"github.com/99minutos/catalog-gateway/internal/pkg/metrics"
)

type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	s.logger.Info().Msg("fetching all products")
	return s.collect(ctx, ports.ProductFilter{})
}

// StreamProducts hands each product to fn as soon as it is read.
func (s *ProductService) StreamProducts(ctx context.Context, fn func(*domain.Product) error) error {
	s.logger.Info().Msg("streaming all products")
	return s.repo.Stream(ctx, ports.ProductFilter{}, fn)
}

func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("product lookup failed")
		return nil, err
	}
	return p, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, input ports.ProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, err
	}

	metrics.ProductMutationsTotal.WithLabelValues("create").Inc()
	s.logger.Info().
		Int64("product_id", created.ID).
		Str("created_by", actor(ctx)).
		Msg("product created")
	return created, nil
}

// UpdateProduct replaces the writable fields of an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, input ports.ProductInput) (*domain.Product, error) {
	updated, err := s.repo.Update(ctx, &domain.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	metrics.ProductMutationsTotal.WithLabelValues("update").Inc()
	s.logger.Info().Int64("product_id", id).Str("updated_by", actor(ctx)).Msg("product updated")
	return updated, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.ProductMutationsTotal.WithLabelValues("delete").Inc()
	s.logger.Info().Int64("product_id", id).Str("deleted_by", actor(ctx)).Msg("product deleted")
	return nil
}

func (s *ProductService) SearchByName(ctx context.Context, name string) ([]*domain.Product, error) {
	s.logger.Info().Str("name", name).Msg("searching products")
	return s.collect(ctx, ports.ProductFilter{NameContains: name})
}

func (s *ProductService) ListUnderPrice(ctx context.Context, price float64) ([]*domain.Product, error) {
	s.logger.Info().Float64("price", price).Msg("fetching products under price")
	return s.collect(ctx, ports.ProductFilter{PriceBelow: &price})
}

func (s *ProductService) collect(ctx context.Context, filter ports.ProductFilter) ([]*domain.Product, error) {
	items := make([]*domain.Product, 0)
	err := s.repo.Stream(ctx, filter, func(p *domain.Product) error {
		items = append(items, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// actor names the authenticated caller for log lines.
func actor(ctx context.Context) string {
	if p, ok := domain.PrincipalFrom(ctx); ok {
		return p.Username
	}
	return "anonymous"
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
	"github.com/99minutos/catalog-gateway/internal/core/ports"
)

type ProductStore struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
	sequence int64
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[int64]domain.Product)}
}

// Stream snapshots the matching products under the read lock, then calls fn
// without holding it.
func (s *ProductStore) Stream(ctx context.Context, filter ports.ProductFilter, fn func(*domain.Product) error) error {
	s.mu.RLock()
	matched := make([]domain.Product, 0, len(s.products))
	needle := strings.ToLower(filter.NameContains)
	for _, p := range s.products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if filter.PriceBelow != nil && p.Price >= *filter.PriceBelow {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	for i := range matched {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(&matched[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProductStore) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (s *ProductStore) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequence++
	clone := *p
	clone.ID = s.sequence
	s.products[clone.ID] = clone
	return &clone, nil
}

// Put stores p under its own ID, advancing the sequence past it. Used to seed
// fixtures with well-known IDs.
func (s *ProductStore) Put(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[p.ID] = p
	if p.ID > s.sequence {
		s.sequence = p.ID
	}
}

func (s *ProductStore) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Price = p.Price
	existing.Quantity = p.Quantity
	existing.UpdatedAt = p.UpdatedAt
	s.products[p.ID] = existing
	return &existing, nil
}

func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

package ports

import (
	"context"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.Identity, error)
	Login(ctx context.Context, username, password string) (string, *domain.Identity, error)
}

package ports

import (
	"context"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

// IdentityRepository defines persistence for registered identities.
//
// Create is the uniqueness arbiter: implementations must reject a second
// identity with the same username or email atomically, returning
// domain.ErrDuplicateUsername or domain.ErrDuplicateEmail.
type IdentityRepository interface {
	// FindByUsername is a case-sensitive exact match. Returns
	// domain.ErrIdentityNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
}

// IdentityLookup is the read-only view the authentication gate needs to turn
// a token subject into a principal.
type IdentityLookup interface {
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
}

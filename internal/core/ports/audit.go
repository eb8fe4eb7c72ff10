package ports

import (
	"context"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

// AuditRepository persists authentication audit events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditLog accepts audit events without blocking the caller.
type AuditLog interface {
	Record(event domain.AuthEvent)
}

// AuditService processes a single audit event taken off the queue.
type AuditService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}

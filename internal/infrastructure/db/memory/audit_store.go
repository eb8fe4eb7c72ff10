package memory

import (
	"context"
	"sync"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

type AuditStore struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, *event)
	return nil
}

// Events returns a copy of everything stored so far, oldest first.
func (s *AuditStore) Events() []domain.AuthEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.AuthEvent, len(s.events))
	copy(out, s.events)
	return out
}

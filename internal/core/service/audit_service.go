package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
	"github.com/99minutos/catalog-gateway/internal/core/ports"
	"github.com/99minutos/catalog-gateway/internal/pkg/metrics"
)

// NopAuditLog discards every event.
type NopAuditLog struct{}

func (NopAuditLog) Record(domain.AuthEvent) {}

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns the AuditService that persists events handed over
// by the queue dispatcher.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process stamps missing identifiers and persists the event.
func (s *auditService) Process(ctx context.Context, event domain.AuthEvent) error {
	start := time.Now()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		metrics.AuditEventsTotal.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("process audit event: %w", err)
	}

	metrics.AuditEventsTotal.WithLabelValues(string(event.Type), "stored").Inc()
	metrics.AuditProcessingDuration.Observe(time.Since(start).Seconds())

	s.log.Debug().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Str("username", event.Username).
		Msg("audit event stored")
	return nil
}

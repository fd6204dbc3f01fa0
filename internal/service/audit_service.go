package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/repository"
)

// AuditPublisher fans audit events out to a secondary sink (a Redis
// stream in production). Implementations must not block for long.
type AuditPublisher interface {
	Publish(ctx context.Context, ev domain.AuditEvent) error
}

// AuditService persists audit events and mirrors them to the stream.
// Recording is best effort: a failing sink is logged and swallowed so
// audit problems never break the guarded operation itself.
type AuditService struct {
	auditRepo repository.AuditRepository
	publisher AuditPublisher
}

func NewAuditService(auditRepo repository.AuditRepository, publisher AuditPublisher) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		publisher: publisher,
	}
}

// Record stamps and stores the event. It never returns an error.
func (s *AuditService) Record(ctx context.Context, ev domain.AuditEvent) {
	if ev.LogID == uuid.Nil {
		ev.LogID = uuid.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if ev.Level == "" {
		ev.Level = domain.AuditInfo
	}

	if s.auditRepo != nil {
		if err := s.auditRepo.Insert(ctx, &ev); err != nil {
			log.Printf("audit: insert failed: %v", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			log.Printf("audit: stream publish failed: %v", err)
		}
	}
}

// List returns stored events matching the filter, newest first.
func (s *AuditService) List(ctx context.Context, filter repository.AuditFilter) ([]*domain.AuditEvent, error) {
	return s.auditRepo.List(ctx, filter)
}

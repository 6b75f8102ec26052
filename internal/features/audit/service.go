package audit

import (
	"context"
	"time"
)

type AuditService interface {
	LogChange(ctx context.Context, action AuditAction, module, recordID, actorID string, changes map[string]Change) error
	Recent(ctx context.Context, limit int64) ([]AuditLog, error)
}

type AuditServiceImpl struct {
	AuditRepo AuditRepository
}

func NewAuditService(auditRepo AuditRepository) AuditService {
	return &AuditServiceImpl{
		AuditRepo: auditRepo,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action AuditAction, module, recordID, actorID string, changes map[string]Change) error {
	return s.AuditRepo.Save(ctx, &AuditLog{
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: time.Now(),
	})
}

func (s *AuditServiceImpl) Recent(ctx context.Context, limit int64) ([]AuditLog, error) {
	return s.AuditRepo.ListRecent(ctx, limit)
}

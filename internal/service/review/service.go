// Package review implements the approval state machine for contributions:
// pending → approved | rejected, rejected → acknowledged. Approved and
// acknowledged are terminal.
package review

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

type contributionRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contribution, error)
	UpdateStatus(ctx context.Context, contributionID uuid.UUID, fromStatus domain.StatusValue, upd *domain.ApprovalStatus) (*domain.ApprovalStatus, error)
}

type caseRepo interface {
	AddToCollectedAmount(ctx context.Context, caseID uuid.UUID, delta int64) error
}

type auditRepo interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides the contribution review operations.
type Service struct {
	contributions contributionRepo
	cases         caseRepo
	audit         auditRepo
	tx            txManager
	log           *slog.Logger
}

// NewService creates a new review service.
func NewService(
	log *slog.Logger,
	contributions contributionRepo,
	cases caseRepo,
	audit auditRepo,
	tx txManager,
) *Service {
	return &Service{
		contributions: contributions,
		cases:         cases,
		audit:         audit,
		tx:            tx,
		log:           log.With("service", "review"),
	}
}

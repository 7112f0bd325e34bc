// Package revision implements resubmission of rejected contributions. A
// revision is a brand-new pending contribution linked back to its rejected
// original through a breadcrumb in free text; the original record is never
// edited.
package revision

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

type contributionRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contribution, error)
	Create(ctx context.Context, c *domain.Contribution) (*domain.Contribution, error)
	IncrementResubmissionCount(ctx context.Context, contributionID uuid.UUID) error
}

type evidenceStorage interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

type paymentMethodLookup interface {
	IsKnown(ctx context.Context, key string) (bool, error)
}

type auditRepo interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service builds revision contributions from donor resubmissions.
type Service struct {
	contributions  contributionRepo
	evidence       evidenceStorage
	paymentMethods paymentMethodLookup
	audit          auditRepo
	tx             txManager
	log            *slog.Logger
}

// NewService creates a new revision service.
func NewService(
	log *slog.Logger,
	contributions contributionRepo,
	evidence evidenceStorage,
	paymentMethods paymentMethodLookup,
	audit auditRepo,
	tx txManager,
) *Service {
	return &Service{
		contributions:  contributions,
		evidence:       evidence,
		paymentMethods: paymentMethods,
		audit:          audit,
		tx:             tx,
		log:            log.With("service", "revision"),
	}
}

// Package contribution implements donor submissions, the reviewer listing
// with revision threads, and the donor reply channel on rejections.
package contribution

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

type contributionRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contribution, error)
	List(ctx context.Context, filter domain.ContributionFilter) ([]*domain.Contribution, int, error)
	Create(ctx context.Context, c *domain.Contribution) (*domain.Contribution, error)
	SetDonorReply(ctx context.Context, contributionID uuid.UUID, reply string, evidenceURI *string, at time.Time) error
}

type caseRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CharityCase, error)
}

type evidenceStorage interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

type paymentMethodLookup interface {
	IsKnown(ctx context.Context, key string) (bool, error)
}

// Service provides contribution submission and listing operations.
type Service struct {
	contributions  contributionRepo
	cases          caseRepo
	evidence       evidenceStorage
	paymentMethods paymentMethodLookup
	log            *slog.Logger
}

// NewService creates a new contribution service.
func NewService(
	log *slog.Logger,
	contributions contributionRepo,
	cases caseRepo,
	evidence evidenceStorage,
	paymentMethods paymentMethodLookup,
) *Service {
	return &Service{
		contributions:  contributions,
		cases:          cases,
		evidence:       evidence,
		paymentMethods: paymentMethods,
		log:            log.With("service", "contribution"),
	}
}

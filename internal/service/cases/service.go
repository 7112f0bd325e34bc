// Package cases implements charity case management: lazily created drafts,
// publishing, editing, and soft deletion.
package cases

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

type caseRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CharityCase, error)
	List(ctx context.Context, status *domain.CaseStatus, limit, offset int) ([]*domain.CharityCase, int, error)
	Create(ctx context.Context, c *domain.CharityCase) (*domain.CharityCase, error)
	Update(ctx context.Context, c *domain.CharityCase) (*domain.CharityCase, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	DeleteAbandonedDrafts(ctx context.Context, threshold time.Time) (int64, error)
	FindDraftByCreator(ctx context.Context, creatorID uuid.UUID) (*domain.CharityCase, error)
}

// Service provides charity case operations.
type Service struct {
	cases caseRepo
	log   *slog.Logger
}

// NewService creates a new cases service.
func NewService(log *slog.Logger, cases caseRepo) *Service {
	return &Service{
		cases: cases,
		log:   log.With("service", "cases"),
	}
}

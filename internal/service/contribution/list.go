package contribution

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/thread"
)

// Get loads a single contribution with its latest approval status.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Contribution, error) {
	return s.contributions.GetByID(ctx, id)
}

// List returns one page of contributions matching the filter.
func (s *Service) List(ctx context.Context, filter domain.ContributionFilter) (*domain.ContributionPage, error) {
	filter.Normalize()

	items, total, err := s.contributions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}

	totalPages := total / filter.Limit
	if total%filter.Limit != 0 {
		totalPages++
	}

	return &domain.ContributionPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		TotalPages: totalPages,
	}, nil
}

// ListThreads returns the page regrouped into revision threads, interleaved
// with standalone contributions by most recent activity. Grouping is
// best-effort within the page: a revision whose original falls outside the
// page is shown standalone rather than misfiled.
func (s *Service) ListThreads(ctx context.Context, filter domain.ContributionFilter) ([]domain.ListEntry, *domain.ContributionPage, error) {
	page, err := s.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	set := thread.Reconstruct(page.Items)
	return thread.Entries(set), page, nil
}

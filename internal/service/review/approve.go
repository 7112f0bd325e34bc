package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
	"github.com/ihsanfoundation/ihsan-backend/pkg/ctxutil"
)

// Approve transitions a pending contribution to approved and adds its amount
// to the case's accumulated total. Both writes happen in one transaction;
// approving a non-pending contribution fails with domain.ErrInvalidTransition
// and changes nothing.
func (s *Service) Approve(ctx context.Context, contributionID uuid.UUID) (*domain.ApprovalStatus, error) {
	actorID, err := requireReviewer(ctx)
	if err != nil {
		return nil, err
	}

	contrib, err := s.contributions.GetByID(ctx, contributionID)
	if err != nil {
		return nil, fmt.Errorf("load contribution: %w", err)
	}

	now := time.Now().UTC()
	var updated *domain.ApprovalStatus

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		updated, err = s.contributions.UpdateStatus(ctx, contributionID, domain.StatusPending, &domain.ApprovalStatus{
			Status:    domain.StatusApproved,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}

		if err := s.cases.AddToCollectedAmount(ctx, contrib.CaseID, contrib.Amount); err != nil {
			return fmt.Errorf("add to collected amount: %w", err)
		}

		return s.audit.Record(ctx, &domain.AuditLog{
			ID:         uuid.New(),
			ActorID:    actorID,
			Action:     domain.AuditActionApprove,
			EntityID:   contributionID,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "contribution approved",
		slog.String("contribution_id", contributionID.String()),
		slog.String("case_id", contrib.CaseID.String()),
		slog.Int64("amount", contrib.Amount),
	)

	return updated, nil
}

// requireReviewer returns the acting user ID, or an error when the context
// user is missing or lacks review rights.
func requireReviewer(ctx context.Context) (uuid.UUID, error) {
	actorID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	role := domain.UserRole(ctxutil.UserRoleFromCtx(ctx))
	if !role.CanReview() {
		return uuid.Nil, domain.ErrForbidden
	}
	return actorID, nil
}

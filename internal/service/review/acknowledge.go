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

// Acknowledge marks a rejected contribution as seen by its donor. Terminal.
// Only the owning donor may acknowledge; acknowledging anything but a
// rejected contribution fails with domain.ErrInvalidTransition.
func (s *Service) Acknowledge(ctx context.Context, contributionID uuid.UUID) (*domain.ApprovalStatus, error) {
	donorID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	contrib, err := s.contributions.GetByID(ctx, contributionID)
	if err != nil {
		return nil, fmt.Errorf("load contribution: %w", err)
	}
	if contrib.DonorID != donorID {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	var updated *domain.ApprovalStatus

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Keep the stored reason and comment; only the status flips.
		upd := &domain.ApprovalStatus{
			Status:    domain.StatusAcknowledged,
			UpdatedAt: now,
		}
		if contrib.Status != nil {
			upd.RejectionReason = contrib.Status.RejectionReason
			upd.AdminComment = contrib.Status.AdminComment
		}

		updated, err = s.contributions.UpdateStatus(ctx, contributionID, domain.StatusRejected, upd)
		if err != nil {
			return err
		}

		return s.audit.Record(ctx, &domain.AuditLog{
			ID:         uuid.New(),
			ActorID:    donorID,
			Action:     domain.AuditActionAcknowledge,
			EntityID:   contributionID,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "rejection acknowledged",
		slog.String("contribution_id", contributionID.String()),
	)

	return updated, nil
}

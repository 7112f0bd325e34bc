package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

// Reject transitions a pending contribution to rejected with a structured
// reason and a mandatory admin comment. ResubmissionCount is left unchanged.
// Validation happens before any store call; rejecting a non-pending
// contribution fails with domain.ErrInvalidTransition.
func (s *Service) Reject(ctx context.Context, input RejectInput) (*domain.ApprovalStatus, error) {
	actorID, err := requireReviewer(ctx)
	if err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	comment := strings.TrimSpace(input.AdminComment)
	reason := input.Reason
	now := time.Now().UTC()

	var updated *domain.ApprovalStatus
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		updated, err = s.contributions.UpdateStatus(ctx, input.ContributionID, domain.StatusPending, &domain.ApprovalStatus{
			Status:          domain.StatusRejected,
			RejectionReason: &reason,
			AdminComment:    &comment,
			UpdatedAt:       now,
		})
		if err != nil {
			return err
		}

		detail := fmt.Sprintf("reason=%s", reason)
		return s.audit.Record(ctx, &domain.AuditLog{
			ID:         uuid.New(),
			ActorID:    actorID,
			Action:     domain.AuditActionReject,
			EntityID:   input.ContributionID,
			Detail:     &detail,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "contribution rejected",
		slog.String("contribution_id", input.ContributionID.String()),
		slog.String("reason", reason.String()),
	)

	return updated, nil
}

package revision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
	"github.com/ihsanfoundation/ihsan-backend/pkg/ctxutil"
)

// Submit creates a revision contribution for a rejected original. The new
// contribution starts pending and carries the linkage breadcrumb both in its
// notes and in its initial status comment. Evidence is uploaded before any
// record is written, so an upload failure aborts the whole submission. The
// original's resubmission counter is bumped in the same transaction.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*domain.Contribution, error) {
	donorID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	known, err := s.paymentMethods.IsKnown(ctx, input.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("lookup payment method: %w", err)
	}
	if !known {
		return nil, domain.NewValidationError("payment_method", "unknown payment method")
	}

	original, err := s.contributions.GetByID(ctx, input.OriginalID)
	if err != nil {
		return nil, fmt.Errorf("load original contribution: %w", err)
	}
	if original.DonorID != donorID {
		return nil, domain.ErrForbidden
	}
	if !original.IsRejected() {
		return nil, fmt.Errorf("original contribution is %s, not rejected: %w",
			original.StatusValue(), domain.ErrConflict)
	}

	reason := domain.ReasonOther
	if original.Status != nil && original.Status.RejectionReason != nil {
		reason = *original.Status.RejectionReason
	}
	breadcrumb := domain.FormatRevisionBreadcrumb(original.ID, reason)

	// Upload first. A stored record pointing at no object would be a broken
	// submission; an orphaned object is merely garbage to collect later.
	var evidenceURI *string
	if len(input.Evidence) > 0 {
		uri, err := s.evidence.Upload(ctx, input.Evidence, input.EvidenceContentType)
		if err != nil {
			return nil, err
		}
		evidenceURI = &uri
	}

	now := time.Now().UTC()
	notes := domain.NotesRevisionPrefix + " " + breadcrumb

	// The explanation of what changed leads; an optional donor message
	// follows it.
	message := strings.TrimSpace(input.Explanation)
	if extra := strings.TrimSpace(input.Message); extra != "" {
		message = message + "\n\n" + extra
	}

	revisionID := uuid.New()
	parentID := original.ID
	revision := &domain.Contribution{
		ID:            revisionID,
		CaseID:        original.CaseID,
		DonorID:       donorID,
		Amount:        input.Amount,
		Message:       &message,
		ParentID:      &parentID,
		EvidenceURI:   evidenceURI,
		PaymentMethod: input.PaymentMethod,
		Anonymous:     input.Anonymous,
		Notes:         &notes,
		CreatedAt:     now,
		Status: &domain.ApprovalStatus{
			ID:             uuid.New(),
			ContributionID: revisionID,
			Status:         domain.StatusPending,
			AdminComment:   &breadcrumb,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}

	var created *domain.Contribution
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err = s.contributions.Create(ctx, revision)
		if err != nil {
			return fmt.Errorf("create revision: %w", err)
		}

		if err := s.contributions.IncrementResubmissionCount(ctx, original.ID); err != nil {
			return fmt.Errorf("bump resubmission count: %w", err)
		}

		detail := fmt.Sprintf("original=%s", original.ID)
		return s.audit.Record(ctx, &domain.AuditLog{
			ID:         uuid.New(),
			ActorID:    donorID,
			Action:     domain.AuditActionRevise,
			EntityID:   created.ID,
			Detail:     &detail,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "revision submitted",
		slog.String("contribution_id", created.ID.String()),
		slog.String("original_id", original.ID.String()),
		slog.String("reason", reason.String()),
	)

	return created, nil
}

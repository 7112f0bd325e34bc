package contribution

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

// Create records a first-time donor submission. Every new contribution starts
// pending; evidence, when attached, is uploaded before the record is written.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Contribution, error) {
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

	cc, err := s.cases.GetByID(ctx, input.CaseID)
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}
	if cc.Status != domain.CaseStatusOpen {
		return nil, fmt.Errorf("case is %s, not open for contributions: %w",
			cc.Status, domain.ErrConflict)
	}

	var evidenceURI *string
	if len(input.Evidence) > 0 {
		uri, err := s.evidence.Upload(ctx, input.Evidence, input.EvidenceContentType)
		if err != nil {
			return nil, err
		}
		evidenceURI = &uri
	}

	c := &domain.Contribution{
		ID:            uuid.New(),
		CaseID:        input.CaseID,
		DonorID:       donorID,
		Amount:        input.Amount,
		EvidenceURI:   evidenceURI,
		PaymentMethod: input.PaymentMethod,
		Anonymous:     input.Anonymous,
		CreatedAt:     time.Now().UTC(),
	}
	if msg := strings.TrimSpace(input.Message); msg != "" {
		c.Message = &msg
	}

	created, err := s.contributions.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create contribution: %w", err)
	}

	s.log.InfoContext(ctx, "contribution submitted",
		slog.String("contribution_id", created.ID.String()),
		slog.String("case_id", input.CaseID.String()),
		slog.Int64("amount", input.Amount),
	)

	return created, nil
}

// Reply attaches a donor's free-text reply (and optional replacement
// evidence) to their rejected contribution. Replies do not change status:
// resubmission goes through the revision pipeline.
func (s *Service) Reply(ctx context.Context, input ReplyInput) error {
	donorID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return err
	}

	c, err := s.contributions.GetByID(ctx, input.ContributionID)
	if err != nil {
		return fmt.Errorf("load contribution: %w", err)
	}
	if c.DonorID != donorID {
		return domain.ErrForbidden
	}
	if !c.IsRejected() {
		return fmt.Errorf("contribution is %s, replies apply to rejected only: %w",
			c.StatusValue(), domain.ErrConflict)
	}

	var evidenceURI *string
	if len(input.Evidence) > 0 {
		uri, err := s.evidence.Upload(ctx, input.Evidence, input.EvidenceContentType)
		if err != nil {
			return err
		}
		evidenceURI = &uri
	}

	reply := strings.TrimSpace(input.Reply)
	if err := s.contributions.SetDonorReply(ctx, input.ContributionID, reply, evidenceURI, time.Now().UTC()); err != nil {
		return fmt.Errorf("store donor reply: %w", err)
	}

	s.log.InfoContext(ctx, "donor replied to rejection",
		slog.String("contribution_id", input.ContributionID.String()),
	)
	return nil
}

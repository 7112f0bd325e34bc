package cases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
	"github.com/ihsanfoundation/ihsan-backend/pkg/ctxutil"
)

// UpdateInput holds the editable fields of a case.
type UpdateInput struct {
	Title              string
	Description        *string
	BeneficiaryName    string
	BeneficiaryContact *string
	CategoryID         *uuid.UUID
	TargetAmount       int64
}

// Validate checks the editable fields and collects all errors.
func (i UpdateInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Title) == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if strings.TrimSpace(i.BeneficiaryName) == "" {
		errs = append(errs, domain.FieldError{Field: "beneficiary_name", Message: "required"})
	}
	if i.TargetAmount <= 0 {
		errs = append(errs, domain.FieldError{Field: "target_amount", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Get loads a case by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.CharityCase, error) {
	return s.cases.GetByID(ctx, id)
}

// List returns one page of cases, optionally filtered by status.
func (s *Service) List(ctx context.Context, status *domain.CaseStatus, page, limit int) ([]*domain.CharityCase, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.cases.List(ctx, status, limit, (page-1)*limit)
}

// EnsureDraft returns the admin's existing draft case, creating an empty one
// when none exists. Drafts let the form save incrementally before publishing.
func (s *Service) EnsureDraft(ctx context.Context) (*domain.CharityCase, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	draft, err := s.cases.FindDraftByCreator(ctx, actorID)
	if err == nil {
		return draft, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find draft: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.cases.Create(ctx, &domain.CharityCase{
		ID:        uuid.New(),
		Status:    domain.CaseStatusDraft,
		CreatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}

	s.log.InfoContext(ctx, "draft case created", slog.String("case_id", created.ID.String()))
	return created, nil
}

// Update edits a case's fields. Works for drafts and open cases alike.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.CharityCase, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	cc, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}

	cc.Title = strings.TrimSpace(input.Title)
	cc.Description = input.Description
	cc.BeneficiaryName = strings.TrimSpace(input.BeneficiaryName)
	cc.BeneficiaryContact = input.BeneficiaryContact
	cc.CategoryID = input.CategoryID
	cc.TargetAmount = input.TargetAmount
	cc.UpdatedAt = time.Now().UTC()

	return s.cases.Update(ctx, cc)
}

// Publish moves a draft to open, making it visible to donors. The draft must
// already carry valid content.
func (s *Service) Publish(ctx context.Context, id uuid.UUID) (*domain.CharityCase, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	cc, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}
	if !cc.IsDraft() {
		return nil, fmt.Errorf("case is %s, only drafts publish: %w", cc.Status, domain.ErrConflict)
	}

	content := UpdateInput{
		Title:           cc.Title,
		BeneficiaryName: cc.BeneficiaryName,
		TargetAmount:    cc.TargetAmount,
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}

	cc.Status = domain.CaseStatusOpen
	cc.UpdatedAt = time.Now().UTC()

	updated, err := s.cases.Update(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("publish case: %w", err)
	}

	s.log.InfoContext(ctx, "case published", slog.String("case_id", id.String()))
	return updated, nil
}

// Close stops an open case from receiving new contributions.
func (s *Service) Close(ctx context.Context, id uuid.UUID) (*domain.CharityCase, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	cc, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}
	if cc.Status != domain.CaseStatusOpen {
		return nil, fmt.Errorf("case is %s, only open cases close: %w", cc.Status, domain.ErrConflict)
	}

	cc.Status = domain.CaseStatusClosed
	cc.UpdatedAt = time.Now().UTC()
	return s.cases.Update(ctx, cc)
}

// DiscardDraft hard-deletes the admin's draft. Published cases are never
// hard-deleted, only soft-deleted via Delete.
func (s *Service) DiscardDraft(ctx context.Context, id uuid.UUID) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}

	cc, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load case: %w", err)
	}
	if !cc.IsDraft() {
		return fmt.Errorf("case is %s, only drafts are discarded: %w", cc.Status, domain.ErrConflict)
	}

	return s.cases.HardDelete(ctx, id)
}

// Delete soft-deletes a published case, keeping its contribution history.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.cases.SoftDelete(ctx, id)
}

// PurgeAbandonedDrafts removes drafts untouched for longer than retention.
// Called by the maintenance job, not by request handlers.
func (s *Service) PurgeAbandonedDrafts(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.cases.DeleteAbandonedDrafts(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	if n > 0 {
		s.log.InfoContext(ctx, "abandoned drafts purged", slog.Int64("count", n))
	}
	return n, nil
}

func requireAdmin(ctx context.Context) (uuid.UUID, error) {
	actorID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	if !ctxutil.IsAdminCtx(ctx) {
		return uuid.Nil, domain.ErrForbidden
	}
	return actorID, nil
}

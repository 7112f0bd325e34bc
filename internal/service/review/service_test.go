package review

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
	"github.com/ihsanfoundation/ihsan-backend/pkg/ctxutil"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockContributionRepo struct {
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Contribution, error)
	UpdateStatusFunc func(ctx context.Context, contributionID uuid.UUID, fromStatus domain.StatusValue, upd *domain.ApprovalStatus) (*domain.ApprovalStatus, error)

	updateCalls int
}

func (m *mockContributionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contribution, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockContributionRepo) UpdateStatus(ctx context.Context, contributionID uuid.UUID, fromStatus domain.StatusValue, upd *domain.ApprovalStatus) (*domain.ApprovalStatus, error) {
	m.updateCalls++
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, contributionID, fromStatus, upd)
	}
	return nil, domain.ErrNotFound
}

type mockCaseRepo struct {
	AddToCollectedAmountFunc func(ctx context.Context, caseID uuid.UUID, delta int64) error

	addCalls int
}

func (m *mockCaseRepo) AddToCollectedAmount(ctx context.Context, caseID uuid.UUID, delta int64) error {
	m.addCalls++
	if m.AddToCollectedAmountFunc != nil {
		return m.AddToCollectedAmountFunc(ctx, caseID, delta)
	}
	return nil
}

type mockAuditRepo struct {
	entries []*domain.AuditLog
}

func (m *mockAuditRepo) Record(_ context.Context, entry *domain.AuditLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

type mockTxManager struct{}

func (mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(contribs *mockContributionRepo, cases *mockCaseRepo, audit *mockAuditRepo) *Service {
	return NewService(slog.Default(), contribs, cases, audit, mockTxManager{})
}

func reviewerCtx() context.Context {
	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	return ctxutil.WithUserRole(ctx, "admin")
}

func donorCtx(donorID uuid.UUID) context.Context {
	ctx := ctxutil.WithUserID(context.Background(), donorID)
	return ctxutil.WithUserRole(ctx, "donor")
}

func pendingContribution(amount int64) *domain.Contribution {
	return &domain.Contribution{
		ID:     uuid.New(),
		CaseID: uuid.New(),
		Amount: amount,
		Status: &domain.ApprovalStatus{Status: domain.StatusPending},
	}
}

// ===========================================================================
// Approve
// ===========================================================================

func TestApprove_Success(t *testing.T) {
	t.Parallel()

	contrib := pendingContribution(5000)
	contribs := &mockContributionRepo{
		GetByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.Contribution, error) {
			return contrib, nil
		},
		UpdateStatusFunc: func(_ context.Context, id uuid.UUID, from domain.StatusValue, upd *domain.ApprovalStatus) (*domain.ApprovalStatus, error) {
			if from != domain.StatusPending {
				t.Errorf("from status: got %s, want pending", from)
			}
			if upd.Status != domain.StatusApproved {
				t.Errorf("to status: got %s, want approved", upd.Status)
			}
			return &domain.ApprovalStatus{ContributionID: id, Status: domain.StatusApproved}, nil
		},
	}
	cases := &mockCaseRepo{
		AddToCollectedAmountFunc: func(_ context.Context, caseID uuid.UUID, delta int64) error {
			if caseID != contrib.CaseID {
				t.Errorf("case id: got %v, want %v", caseID, contrib.CaseID)
			}
			if delta != 5000 {
				t.Errorf("delta: got %d, want 5000", delta)
			}
			return nil
		},
	}
	audit := &mockAuditRepo{}

	svc := newTestService(contribs, cases, audit)
	status, err := svc.Approve(reviewerCtx(), contrib.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != domain.StatusApproved {
		t.Errorf("status: got %s, want approved", status.Status)
	}
	if cases.addCalls != 1 {
		t.Errorf("AddToCollectedAmount calls: got %d, want 1", cases.addCalls)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != domain.AuditActionApprove {
		t.Errorf("audit entries: %+v", audit.entries)
	}
}

func TestApprove_NonPendingFailsWithInvalidTransition(t *testing.T) {
	t.Parallel()

	contrib := pendingContribution(100)
	contrib.Status.Status = domain.StatusApproved

	contribs := &mockContributionRepo{
		GetByIDFunc: func(context.Context, uuid.UUID) (*domain.Contribution, error) {
			return contrib, nil
		},
		UpdateStatusFunc: func(_ context.Context, _ uuid.UUID, _ domain.StatusValue, upd *domain.ApprovalStatus) (*domain.ApprovalStatus, error) {
			return nil, &domain.InvalidTransitionError{From: domain.StatusApproved, To: upd.Status}
		},
	}
	cases := &mockCaseRepo{}

	svc := newTestService(contribs, cases, &mockAuditRepo{})
	_, err := svc.Approve(reviewerCtx(), contrib.ID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if cases.addCalls != 0 {
		t.Error("collected amount must not change on a failed transition")
	}
}

func TestApprove_RequiresReviewerRole(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockContributionRepo{}, &mockCaseRepo{}, &mockAuditRepo{})

	_, err := svc.Approve(donorCtx(uuid.New()), uuid.New())
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	_, err = svc.Approve(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

// ===========================================================================
// Reject
// ===========================================================================

func TestReject_Success(t *testing.T) {
	t.Parallel()

	contribID := uuid.New()
	contribs := &mockContributionRepo{
		UpdateStatusFunc: func(_ context.Context, id uuid.UUID, from domain.StatusValue, upd *domain.ApprovalStatus) (*domain.ApprovalStatus, error) {
			if from != domain.StatusPending {
				t.Errorf("from: got %s", from)
			}
			if upd.RejectionReason == nil || *upd.RejectionReason != domain.ReasonWrongAmount {
				t.Errorf("reason: got %v", upd.RejectionReason)
			}
			if upd.AdminComment == nil || *upd.AdminComment != "amount does not match the receipt" {
				t.Errorf("comment: got %v", upd.AdminComment)
			}
			return &domain.ApprovalStatus{ContributionID: id, Status: domain.StatusRejected,
				RejectionReason: upd.RejectionReason, AdminComment: upd.AdminComment}, nil
		},
	}
	audit := &mockAuditRepo{}

	svc := newTestService(contribs, &mockCaseRepo{}, audit)
	status, err := svc.Reject(reviewerCtx(), RejectInput{
		ContributionID: contribID,
		Reason:         domain.ReasonWrongAmount,
		AdminComment:   "  amount does not match the receipt  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != domain.StatusRejected {
		t.Errorf("status: got %s", status.Status)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != domain.AuditActionReject {
		t.Errorf("audit entries: %+v", audit.entries)
	}
}

func TestReject_EmptyCommentFailsForEveryReason(t *testing.T) {
	t.Parallel()

	for _, reason := range domain.AllRejectionReasons {
		for _, comment := range []string{"", "   ", "\t\n"} {
			contribs := &mockContributionRepo{}
			svc := newTestService(contribs, &mockCaseRepo{}, &mockAuditRepo{})

			_, err := svc.Reject(reviewerCtx(), RejectInput{
				ContributionID: uuid.New(),
				Reason:         reason,
				AdminComment:   comment,
			})

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("reason %s comment %q: expected ValidationError, got %v", reason, comment, err)
			}
			if contribs.updateCalls != 0 {
				t.Errorf("reason %s: store must not be touched on validation failure", reason)
			}
		}
	}
}

func TestReject_UnknownReason(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockContributionRepo{}, &mockCaseRepo{}, &mockAuditRepo{})
	_, err := svc.Reject(reviewerCtx(), RejectInput{
		ContributionID: uuid.New(),
		Reason:         domain.RejectionReason("not_a_reason"),
		AdminComment:   "comment",
	})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestReject_CollectsAllFieldErrors(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockContributionRepo{}, &mockCaseRepo{}, &mockAuditRepo{})
	_, err := svc.Reject(reviewerCtx(), RejectInput{})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Errors) != 3 {
		t.Errorf("field errors: got %d, want 3 (%+v)", len(ve.Errors), ve.Errors)
	}
}

// ===========================================================================
// Acknowledge
// ===========================================================================

func TestAcknowledge_Success(t *testing.T) {
	t.Parallel()

	donorID := uuid.New()
	reason := domain.ReasonPaymentExpired
	comment := "receipt is from last year"
	contrib := &domain.Contribution{
		ID:      uuid.New(),
		DonorID: donorID,
		Status: &domain.ApprovalStatus{
			Status:          domain.StatusRejected,
			RejectionReason: &reason,
			AdminComment:    &comment,
		},
	}

	contribs := &mockContributionRepo{
		GetByIDFunc: func(context.Context, uuid.UUID) (*domain.Contribution, error) {
			return contrib, nil
		},
		UpdateStatusFunc: func(_ context.Context, id uuid.UUID, from domain.StatusValue, upd *domain.ApprovalStatus) (*domain.ApprovalStatus, error) {
			if from != domain.StatusRejected {
				t.Errorf("from: got %s, want rejected", from)
			}
			if upd.RejectionReason == nil || *upd.RejectionReason != reason {
				t.Error("reason must be preserved through acknowledgement")
			}
			return &domain.ApprovalStatus{ContributionID: id, Status: domain.StatusAcknowledged}, nil
		},
	}

	svc := newTestService(contribs, &mockCaseRepo{}, &mockAuditRepo{})
	status, err := svc.Acknowledge(donorCtx(donorID), contrib.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != domain.StatusAcknowledged {
		t.Errorf("status: got %s", status.Status)
	}
}

func TestAcknowledge_OtherDonorForbidden(t *testing.T) {
	t.Parallel()

	contrib := &domain.Contribution{
		ID:      uuid.New(),
		DonorID: uuid.New(),
		Status:  &domain.ApprovalStatus{Status: domain.StatusRejected},
	}
	contribs := &mockContributionRepo{
		GetByIDFunc: func(context.Context, uuid.UUID) (*domain.Contribution, error) {
			return contrib, nil
		},
	}

	svc := newTestService(contribs, &mockCaseRepo{}, &mockAuditRepo{})
	_, err := svc.Acknowledge(donorCtx(uuid.New()), contrib.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if contribs.updateCalls != 0 {
		t.Error("store must not be touched")
	}
}

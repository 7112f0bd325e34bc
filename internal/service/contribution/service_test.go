package contribution

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
	"github.com/ihsanfoundation/ihsan-backend/pkg/ctxutil"
)

type mockContributionRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Contribution, error)
	ListFunc    func(ctx context.Context, filter domain.ContributionFilter) ([]*domain.Contribution, int, error)

	created []*domain.Contribution
	replies int
}

func (m *mockContributionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contribution, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockContributionRepo) List(ctx context.Context, filter domain.ContributionFilter) ([]*domain.Contribution, int, error) {
	return m.ListFunc(ctx, filter)
}

func (m *mockContributionRepo) Create(_ context.Context, c *domain.Contribution) (*domain.Contribution, error) {
	m.created = append(m.created, c)
	return c, nil
}

func (m *mockContributionRepo) SetDonorReply(context.Context, uuid.UUID, string, *string, time.Time) error {
	m.replies++
	return nil
}

type mockCaseRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.CharityCase, error)
}

func (m *mockCaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CharityCase, error) {
	return m.GetByIDFunc(ctx, id)
}

type mockEvidence struct {
	UploadFunc func(ctx context.Context, data []byte, contentType string) (string, error)

	uploads int
}

func (m *mockEvidence) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	m.uploads++
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, data, contentType)
	}
	return "s3://evidence/" + uuid.NewString() + ".png", nil
}

type mockPaymentMethods struct{}

func (mockPaymentMethods) IsKnown(_ context.Context, key string) (bool, error) {
	return key == "bank_transfer" || key == "cash", nil
}

func newTestService(contribs *mockContributionRepo, cases *mockCaseRepo, evidence *mockEvidence) *Service {
	return NewService(slog.Default(), contribs, cases, evidence, mockPaymentMethods{})
}

func donorCtx(donorID uuid.UUID) context.Context {
	ctx := ctxutil.WithUserID(context.Background(), donorID)
	return ctxutil.WithUserRole(ctx, "donor")
}

func openCase() *domain.CharityCase {
	return &domain.CharityCase{ID: uuid.New(), Title: "Medical fund", Status: domain.CaseStatusOpen}
}

func TestCreate_StartsPending(t *testing.T) {
	t.Parallel()

	cc := openCase()
	contribs := &mockContributionRepo{}
	cases := &mockCaseRepo{GetByIDFunc: func(context.Context, uuid.UUID) (*domain.CharityCase, error) {
		return cc, nil
	}}
	evidence := &mockEvidence{}

	svc := newTestService(contribs, cases, evidence)
	created, err := svc.Create(donorCtx(uuid.New()), CreateInput{
		CaseID:              cc.ID,
		Amount:              1500,
		PaymentMethod:       "bank_transfer",
		Message:             " for the surgery ",
		Evidence:            []byte("png-bytes"),
		EvidenceContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.StatusValue() != domain.StatusPending {
		t.Errorf("status: got %s, want pending", created.StatusValue())
	}
	if created.Message == nil || *created.Message != "for the surgery" {
		t.Errorf("message: got %v", created.Message)
	}
	if created.EvidenceURI == nil {
		t.Error("evidence uri missing")
	}
	if evidence.uploads != 1 {
		t.Errorf("uploads: got %d, want 1", evidence.uploads)
	}
}

func TestCreate_ClosedCaseConflicts(t *testing.T) {
	t.Parallel()

	cc := openCase()
	cc.Status = domain.CaseStatusClosed
	contribs := &mockContributionRepo{}
	cases := &mockCaseRepo{GetByIDFunc: func(context.Context, uuid.UUID) (*domain.CharityCase, error) {
		return cc, nil
	}}

	svc := newTestService(contribs, cases, &mockEvidence{})
	_, err := svc.Create(donorCtx(uuid.New()), CreateInput{
		CaseID: cc.ID, Amount: 100, PaymentMethod: "cash",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(contribs.created) != 0 {
		t.Error("nothing may be written")
	}
}

func TestCreate_UploadFailureWritesNoRecord(t *testing.T) {
	t.Parallel()

	cases := &mockCaseRepo{GetByIDFunc: func(context.Context, uuid.UUID) (*domain.CharityCase, error) {
		return openCase(), nil
	}}
	contribs := &mockContributionRepo{}
	evidence := &mockEvidence{UploadFunc: func(context.Context, []byte, string) (string, error) {
		return "", &domain.UploadError{Reason: "too_large", Cause: errors.New("11 MiB > 10 MiB")}
	}}

	svc := newTestService(contribs, cases, evidence)
	_, err := svc.Create(donorCtx(uuid.New()), CreateInput{
		CaseID: uuid.New(), Amount: 100, PaymentMethod: "cash",
		Evidence: []byte("big"), EvidenceContentType: "image/png",
	})
	if !errors.Is(err, domain.ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}
	if len(contribs.created) != 0 {
		t.Error("no record may follow a failed upload")
	}
}

func TestList_TotalPages(t *testing.T) {
	t.Parallel()

	contribs := &mockContributionRepo{
		ListFunc: func(_ context.Context, filter domain.ContributionFilter) ([]*domain.Contribution, int, error) {
			if filter.Limit != 20 || filter.Page != 1 {
				t.Errorf("filter not normalized: %+v", filter)
			}
			return make([]*domain.Contribution, 20), 41, nil
		},
	}

	svc := newTestService(contribs, &mockCaseRepo{}, &mockEvidence{})
	page, err := svc.List(context.Background(), domain.ContributionFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 41 || page.TotalPages != 3 {
		t.Errorf("total=%d totalPages=%d, want 41/3", page.Total, page.TotalPages)
	}
}

func TestListThreads_GroupsWithinPage(t *testing.T) {
	t.Parallel()

	donor := uuid.New()
	reason := domain.ReasonWrongAmount
	comment := "amount mismatch"
	original := &domain.Contribution{
		ID: uuid.New(), DonorID: donor, Amount: 900,
		CreatedAt: time.Now().Add(-2 * time.Hour),
		Status: &domain.ApprovalStatus{
			Status: domain.StatusRejected, RejectionReason: &reason, AdminComment: &comment,
		},
	}
	b := domain.FormatRevisionBreadcrumb(original.ID, reason)
	notes := domain.NotesRevisionPrefix + " " + b
	revision := &domain.Contribution{
		ID: uuid.New(), DonorID: donor, Amount: 1000,
		Notes:     &notes,
		CreatedAt: time.Now().Add(-time.Hour),
		Status:    &domain.ApprovalStatus{Status: domain.StatusPending, AdminComment: &b},
	}

	contribs := &mockContributionRepo{
		ListFunc: func(context.Context, domain.ContributionFilter) ([]*domain.Contribution, int, error) {
			return []*domain.Contribution{revision, original}, 2, nil
		},
	}

	svc := newTestService(contribs, &mockCaseRepo{}, &mockEvidence{})
	entries, page, err := svc.ListThreads(context.Background(), domain.ContributionFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("total: got %d", page.Total)
	}
	if len(entries) != 1 || entries[0].Thread == nil {
		t.Fatalf("entries: %+v", entries)
	}
	th := entries[0].Thread
	if th.Root.ID != original.ID || len(th.Revisions) != 1 || th.Revisions[0].ID != revision.ID {
		t.Errorf("thread: root=%s revisions=%v", th.Root.ID, th.Revisions)
	}
}

func TestReply_OnlyOnRejected(t *testing.T) {
	t.Parallel()

	donor := uuid.New()
	c := &domain.Contribution{
		ID: uuid.New(), DonorID: donor,
		Status: &domain.ApprovalStatus{Status: domain.StatusApproved},
	}
	contribs := &mockContributionRepo{
		GetByIDFunc: func(context.Context, uuid.UUID) (*domain.Contribution, error) {
			return c, nil
		},
	}

	svc := newTestService(contribs, &mockCaseRepo{}, &mockEvidence{})
	err := svc.Reply(donorCtx(donor), ReplyInput{ContributionID: c.ID, Reply: "I paid twice"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if contribs.replies != 0 {
		t.Error("reply must not be stored")
	}
}

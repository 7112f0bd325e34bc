package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/contribution"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/review"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/revision"
)

type contributionServiceMock struct {
	GetFunc         func(ctx context.Context, id uuid.UUID) (*domain.Contribution, error)
	ListFunc        func(ctx context.Context, filter domain.ContributionFilter) (*domain.ContributionPage, error)
	ListThreadsFunc func(ctx context.Context, filter domain.ContributionFilter) ([]domain.ListEntry, *domain.ContributionPage, error)
	CreateFunc      func(ctx context.Context, input contribution.CreateInput) (*domain.Contribution, error)
	ReplyFunc       func(ctx context.Context, input contribution.ReplyInput) error
}

func (m *contributionServiceMock) Get(ctx context.Context, id uuid.UUID) (*domain.Contribution, error) {
	return m.GetFunc(ctx, id)
}

func (m *contributionServiceMock) List(ctx context.Context, filter domain.ContributionFilter) (*domain.ContributionPage, error) {
	return m.ListFunc(ctx, filter)
}

func (m *contributionServiceMock) ListThreads(ctx context.Context, filter domain.ContributionFilter) ([]domain.ListEntry, *domain.ContributionPage, error) {
	return m.ListThreadsFunc(ctx, filter)
}

func (m *contributionServiceMock) Create(ctx context.Context, input contribution.CreateInput) (*domain.Contribution, error) {
	return m.CreateFunc(ctx, input)
}

func (m *contributionServiceMock) Reply(ctx context.Context, input contribution.ReplyInput) error {
	return m.ReplyFunc(ctx, input)
}

type reviewServiceMock struct {
	ApproveFunc     func(ctx context.Context, id uuid.UUID) (*domain.ApprovalStatus, error)
	RejectFunc      func(ctx context.Context, input review.RejectInput) (*domain.ApprovalStatus, error)
	AcknowledgeFunc func(ctx context.Context, id uuid.UUID) (*domain.ApprovalStatus, error)
}

func (m *reviewServiceMock) Approve(ctx context.Context, id uuid.UUID) (*domain.ApprovalStatus, error) {
	return m.ApproveFunc(ctx, id)
}

func (m *reviewServiceMock) Reject(ctx context.Context, input review.RejectInput) (*domain.ApprovalStatus, error) {
	return m.RejectFunc(ctx, input)
}

func (m *reviewServiceMock) Acknowledge(ctx context.Context, id uuid.UUID) (*domain.ApprovalStatus, error) {
	return m.AcknowledgeFunc(ctx, id)
}

type revisionServiceMock struct {
	SubmitFunc func(ctx context.Context, input revision.SubmitInput) (*domain.Contribution, error)
}

func (m *revisionServiceMock) Submit(ctx context.Context, input revision.SubmitInput) (*domain.Contribution, error) {
	return m.SubmitFunc(ctx, input)
}

func newHandler(c *contributionServiceMock, rv *reviewServiceMock, rs *revisionServiceMock) *ContributionHandler {
	return NewContributionHandler(c, rv, rs, slog.Default())
}

func serve(h http.HandlerFunc, method, target, pattern string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(method+" "+pattern, h)

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestReject_ValidationErrorIs400WithFields(t *testing.T) {
	reviews := &reviewServiceMock{
		RejectFunc: func(_ context.Context, input review.RejectInput) (*domain.ApprovalStatus, error) {
			return nil, input.Validate()
		},
	}
	h := newHandler(&contributionServiceMock{}, reviews, &revisionServiceMock{})

	body := bytes.NewBufferString(`{"reason":"other","adminComment":""}`)
	rec := serve(h.Reject, http.MethodPost,
		"/contributions/"+uuid.NewString()+"/reject", "/contributions/{id}/reject",
		body, "application/json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}

	var resp validationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Fields) == 0 {
		t.Error("expected field-level errors")
	}
	for _, f := range resp.Fields {
		if f.Field == "admin_comment" {
			return
		}
	}
	t.Errorf("admin_comment missing from fields: %+v", resp.Fields)
}

func TestApprove_InvalidTransitionIs409(t *testing.T) {
	reviews := &reviewServiceMock{
		ApproveFunc: func(context.Context, uuid.UUID) (*domain.ApprovalStatus, error) {
			return nil, &domain.InvalidTransitionError{
				From: domain.StatusApproved,
				To:   domain.StatusApproved,
			}
		},
	}
	h := newHandler(&contributionServiceMock{}, reviews, &revisionServiceMock{})

	rec := serve(h.Approve, http.MethodPost,
		"/contributions/"+uuid.NewString()+"/approve", "/contributions/{id}/approve", nil, "")

	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want 409", rec.Code)
	}
}

func TestApprove_InvalidIDIs400(t *testing.T) {
	h := newHandler(&contributionServiceMock{}, &reviewServiceMock{}, &revisionServiceMock{})

	rec := serve(h.Approve, http.MethodPost,
		"/contributions/not-a-uuid/approve", "/contributions/{id}/approve", nil, "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestCreate_UploadErrorIs502(t *testing.T) {
	contribs := &contributionServiceMock{
		CreateFunc: func(context.Context, contribution.CreateInput) (*domain.Contribution, error) {
			return nil, &domain.UploadError{Reason: "transport", Cause: errors.New("timeout")}
		},
	}
	h := newHandler(contribs, &reviewServiceMock{}, &revisionServiceMock{})

	body := &bytes.Buffer{}
	contentType := multipartForm(t, body, map[string]string{
		"caseId":        uuid.NewString(),
		"amount":        "1000",
		"paymentMethod": "cash",
	})

	rec := serve(h.Create, http.MethodPost, "/contributions", "/contributions", body, contentType)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", rec.Code)
	}
}

func TestList_ThreadView(t *testing.T) {
	donor := uuid.New()
	reason := domain.ReasonWrongAmount
	comment := "see the receipt"
	root := &domain.Contribution{
		ID: uuid.New(), CaseID: uuid.New(), DonorID: donor, Amount: 500,
		Status: &domain.ApprovalStatus{
			Status: domain.StatusRejected, RejectionReason: &reason, AdminComment: &comment,
		},
	}
	th := &domain.Thread{Root: root}

	contribs := &contributionServiceMock{
		ListThreadsFunc: func(_ context.Context, filter domain.ContributionFilter) ([]domain.ListEntry, *domain.ContributionPage, error) {
			if filter.Status == nil || *filter.Status != domain.StatusRejected {
				t.Errorf("status filter not parsed: %+v", filter)
			}
			return []domain.ListEntry{{Thread: th}},
				&domain.ContributionPage{Total: 1, Page: 1, TotalPages: 1}, nil
		},
	}
	h := newHandler(contribs, &reviewServiceMock{}, &revisionServiceMock{})

	rec := serve(h.List, http.MethodGet,
		"/contributions?view=threads&status=rejected", "/contributions", nil, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"reasonLabel":"Wrong Amount"`) {
		t.Errorf("reason label missing from body: %s", rec.Body.String())
	}
}

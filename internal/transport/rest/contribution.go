package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/contribution"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/review"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/revision"
)

// maxFormMemory bounds in-memory multipart parsing; larger evidence spills
// to temp files before the storage layer enforces its own size limit.
const maxFormMemory = 16 << 20

type contributionService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Contribution, error)
	List(ctx context.Context, filter domain.ContributionFilter) (*domain.ContributionPage, error)
	ListThreads(ctx context.Context, filter domain.ContributionFilter) ([]domain.ListEntry, *domain.ContributionPage, error)
	Create(ctx context.Context, input contribution.CreateInput) (*domain.Contribution, error)
	Reply(ctx context.Context, input contribution.ReplyInput) error
}

type reviewService interface {
	Approve(ctx context.Context, contributionID uuid.UUID) (*domain.ApprovalStatus, error)
	Reject(ctx context.Context, input review.RejectInput) (*domain.ApprovalStatus, error)
	Acknowledge(ctx context.Context, contributionID uuid.UUID) (*domain.ApprovalStatus, error)
}

type revisionService interface {
	Submit(ctx context.Context, input revision.SubmitInput) (*domain.Contribution, error)
}

// ContributionHandler serves contribution and review REST endpoints.
type ContributionHandler struct {
	contributions contributionService
	reviews       reviewService
	revisions     revisionService
	log           *slog.Logger
}

// NewContributionHandler creates a ContributionHandler.
func NewContributionHandler(
	contributions contributionService,
	reviews reviewService,
	revisions revisionService,
	logger *slog.Logger,
) *ContributionHandler {
	return &ContributionHandler{
		contributions: contributions,
		reviews:       reviews,
		revisions:     revisions,
		log:           logger.With("handler", "contribution"),
	}
}

type statusResponse struct {
	Status            string  `json:"status"`
	RejectionReason   *string `json:"rejectionReason,omitempty"`
	ReasonLabel       *string `json:"reasonLabel,omitempty"`
	AdminComment      *string `json:"adminComment,omitempty"`
	DonorReply        *string `json:"donorReply,omitempty"`
	ResubmissionCount int     `json:"resubmissionCount"`
}

type contributionResponse struct {
	ID            string         `json:"id"`
	CaseID        string         `json:"caseId"`
	CaseTitle     string         `json:"caseTitle,omitempty"`
	DonorName     string         `json:"donorName,omitempty"`
	Amount        int64          `json:"amount"`
	Message       *string        `json:"message,omitempty"`
	ParentID      *string        `json:"parentId,omitempty"`
	EvidenceURI   *string        `json:"evidenceUri,omitempty"`
	PaymentMethod string         `json:"paymentMethod"`
	Anonymous     bool           `json:"anonymous"`
	CreatedAt     time.Time      `json:"createdAt"`
	Status        statusResponse `json:"status"`
}

type threadResponse struct {
	Root      contributionResponse   `json:"root"`
	Revisions []contributionResponse `json:"revisions"`
}

type listEntryResponse struct {
	Thread     *threadResponse       `json:"thread,omitempty"`
	Standalone *contributionResponse `json:"standalone,omitempty"`
}

type pageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

func toContributionResponse(c *domain.Contribution) contributionResponse {
	resp := contributionResponse{
		ID:            c.ID.String(),
		CaseID:        c.CaseID.String(),
		CaseTitle:     c.CaseTitle,
		Amount:        c.Amount,
		Message:       c.Message,
		EvidenceURI:   c.EvidenceURI,
		PaymentMethod: c.PaymentMethod,
		Anonymous:     c.Anonymous,
		CreatedAt:     c.CreatedAt,
		Status:        statusResponse{Status: c.StatusValue().String()},
	}
	if !c.Anonymous {
		resp.DonorName = c.DonorName
	}
	if c.ParentID != nil {
		pid := c.ParentID.String()
		resp.ParentID = &pid
	}
	if st := c.Status; st != nil {
		resp.Status.AdminComment = st.AdminComment
		resp.Status.DonorReply = st.DonorReply
		resp.Status.ResubmissionCount = st.ResubmissionCount
		if st.RejectionReason != nil {
			key := st.RejectionReason.String()
			label := st.RejectionReason.Label()
			resp.Status.RejectionReason = &key
			resp.Status.ReasonLabel = &label
		}
	}
	return resp
}

func toListEntryResponse(e domain.ListEntry) listEntryResponse {
	if e.Thread != nil {
		tr := threadResponse{
			Root:      toContributionResponse(e.Thread.Root),
			Revisions: make([]contributionResponse, 0, len(e.Thread.Revisions)),
		}
		for _, rev := range e.Thread.Revisions {
			tr.Revisions = append(tr.Revisions, toContributionResponse(rev))
		}
		return listEntryResponse{Thread: &tr}
	}
	c := toContributionResponse(e.Standalone)
	return listEntryResponse{Standalone: &c}
}

func filterFromQuery(r *http.Request) domain.ContributionFilter {
	q := r.URL.Query()
	filter := domain.ContributionFilter{
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 0),
	}
	if v := q.Get("status"); v != "" {
		status := domain.StatusValue(v)
		filter.Status = &status
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}
	if v := q.Get("dateFrom"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := q.Get("dateTo"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateTo = &t
		}
	}
	return filter
}

// List handles GET /contributions. With ?view=threads the page is regrouped
// into revision threads interleaved with standalone items.
func (h *ContributionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	if r.URL.Query().Get("view") == "threads" {
		entries, page, err := h.contributions.ListThreads(r.Context(), filter)
		if err != nil {
			respondError(w, r, h.log, err)
			return
		}
		items := make([]listEntryResponse, 0, len(entries))
		for _, e := range entries {
			items = append(items, toListEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"entries": items,
			"meta":    pageMeta{Total: page.Total, Page: page.Page, TotalPages: page.TotalPages},
		})
		return
	}

	page, err := h.contributions.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	items := make([]contributionResponse, 0, len(page.Items))
	for _, c := range page.Items {
		items = append(items, toContributionResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"meta":  pageMeta{Total: page.Total, Page: page.Page, TotalPages: page.TotalPages},
	})
}

// Get handles GET /contributions/{id}.
func (h *ContributionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.contributions.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toContributionResponse(c))
}

// Create handles POST /contributions (multipart: fields + optional evidence
// file part).
func (h *ContributionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	caseID, err := uuid.Parse(r.FormValue("caseId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid caseId")
		return
	}

	input := contribution.CreateInput{
		CaseID:        caseID,
		Amount:        formInt64(r, "amount"),
		PaymentMethod: r.FormValue("paymentMethod"),
		Message:       r.FormValue("message"),
		Anonymous:     r.FormValue("anonymous") == "true",
	}
	input.Evidence, input.EvidenceContentType, err = readEvidence(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable evidence file")
		return
	}

	created, err := h.contributions.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContributionResponse(created))
}

// Approve handles POST /contributions/{id}/approve.
func (h *ContributionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	status, err := h.reviews.Approve(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status.Status.String()})
}

type rejectRequest struct {
	Reason       string `json:"reason"`
	AdminComment string `json:"adminComment"`
}

// Reject handles POST /contributions/{id}/reject.
func (h *ContributionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req rejectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := h.reviews.Reject(r.Context(), review.RejectInput{
		ContributionID: id,
		Reason:         domain.RejectionReason(req.Reason),
		AdminComment:   req.AdminComment,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	resp := map[string]string{"status": status.Status.String()}
	if status.RejectionReason != nil {
		resp["reason"] = status.RejectionReason.String()
		resp["reasonLabel"] = status.RejectionReason.Label()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Acknowledge handles POST /contributions/{id}/acknowledge.
func (h *ContributionHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	status, err := h.reviews.Acknowledge(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status.Status.String()})
}

// Revise handles POST /contributions/{id}/revise (multipart).
func (h *ContributionHandler) Revise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := revision.SubmitInput{
		OriginalID:    id,
		Amount:        formInt64(r, "amount"),
		PaymentMethod: r.FormValue("paymentMethod"),
		Explanation:   r.FormValue("explanation"),
		Message:       r.FormValue("message"),
		Anonymous:     r.FormValue("anonymous") == "true",
	}
	var err error
	input.Evidence, input.EvidenceContentType, err = readEvidence(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable evidence file")
		return
	}

	created, err := h.revisions.Submit(r.Context(), input)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContributionResponse(created))
}

// Reply handles POST /contributions/{id}/reply (multipart).
func (h *ContributionHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := contribution.ReplyInput{
		ContributionID: id,
		Reply:          r.FormValue("reply"),
	}
	var err error
	input.Evidence, input.EvidenceContentType, err = readEvidence(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable evidence file")
		return
	}

	if err := h.contributions.Reply(r.Context(), input); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func formInt64(r *http.Request, name string) int64 {
	n, err := strconv.ParseInt(r.FormValue(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// readEvidence pulls the optional "evidence" file part out of a parsed
// multipart form.
func readEvidence(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("evidence")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, evidenceContentType(header), nil
}

func evidenceContentType(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}

package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
	"github.com/ihsanfoundation/ihsan-backend/internal/service/cases"
)

type caseService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.CharityCase, error)
	List(ctx context.Context, status *domain.CaseStatus, page, limit int) ([]*domain.CharityCase, int, error)
	EnsureDraft(ctx context.Context) (*domain.CharityCase, error)
	Update(ctx context.Context, id uuid.UUID, input cases.UpdateInput) (*domain.CharityCase, error)
	Publish(ctx context.Context, id uuid.UUID) (*domain.CharityCase, error)
	Close(ctx context.Context, id uuid.UUID) (*domain.CharityCase, error)
	DiscardDraft(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CaseHandler serves charity case REST endpoints.
type CaseHandler struct {
	svc caseService
	log *slog.Logger
}

// NewCaseHandler creates a CaseHandler.
func NewCaseHandler(svc caseService, logger *slog.Logger) *CaseHandler {
	return &CaseHandler{svc: svc, log: logger.With("handler", "cases")}
}

type caseResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	BeneficiaryName string    `json:"beneficiaryName"`
	TargetAmount    int64     `json:"targetAmount"`
	CollectedAmount int64     `json:"collectedAmount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toCaseResponse(c *domain.CharityCase) caseResponse {
	return caseResponse{
		ID:              c.ID.String(),
		Title:           c.Title,
		Description:     c.Description,
		BeneficiaryName: c.BeneficiaryName,
		TargetAmount:    c.TargetAmount,
		CollectedAmount: c.CollectedAmount,
		Status:          c.Status.String(),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type caseUpdateRequest struct {
	Title              string  `json:"title"`
	Description        *string `json:"description"`
	BeneficiaryName    string  `json:"beneficiaryName"`
	BeneficiaryContact *string `json:"beneficiaryContact"`
	CategoryID         *string `json:"categoryId"`
	TargetAmount       int64   `json:"targetAmount"`
}

// List handles GET /cases.
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *domain.CaseStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.CaseStatus(v)
		status = &s
	}

	items, total, err := h.svc.List(r.Context(), status, queryInt(r, "page", 1), queryInt(r, "limit", 20))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	resp := make([]caseResponse, 0, len(items))
	for _, c := range items {
		resp = append(resp, toCaseResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": resp, "total": total})
}

// Get handles GET /cases/{id}.
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(c))
}

// EnsureDraft handles POST /cases/draft.
func (h *CaseHandler) EnsureDraft(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.EnsureDraft(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(c))
}

// Update handles PATCH /cases/{id}.
func (h *CaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req caseUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := cases.UpdateInput{
		Title:              req.Title,
		Description:        req.Description,
		BeneficiaryName:    req.BeneficiaryName,
		BeneficiaryContact: req.BeneficiaryContact,
		TargetAmount:       req.TargetAmount,
	}
	if req.CategoryID != nil {
		catID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid categoryId")
			return
		}
		input.CategoryID = &catID
	}

	c, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(c))
}

// Publish handles POST /cases/{id}/publish.
func (h *CaseHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.svc.Publish(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(c))
}

// Close handles POST /cases/{id}/close.
func (h *CaseHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.svc.Close(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(c))
}

// Delete handles DELETE /cases/{id}. Drafts are discarded outright;
// published cases are soft-deleted.
func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	if c.IsDraft() {
		err = h.svc.DiscardDraft(r.Context(), id)
	} else {
		err = h.svc.Delete(r.Context(), id)
	}
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

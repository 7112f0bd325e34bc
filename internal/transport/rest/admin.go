package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

type userService interface {
	List(ctx context.Context, page, limit int) ([]*domain.User, int, error)
	ChangeRole(ctx context.Context, userID uuid.UUID, role domain.UserRole) (*domain.User, error)
}

type auditService interface {
	ListByEntity(ctx context.Context, entityID uuid.UUID, limit int) ([]domain.AuditLog, error)
}

// AdminHandler serves user administration REST endpoints.
type AdminHandler struct {
	users userService
	audit auditService
	log   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(users userService, audit auditService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users: users,
		audit: audit,
		log:   logger.With("handler", "admin"),
	}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, total, err := h.users.List(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", 20))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeRole handles PATCH /admin/users/{id}/role.
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req changeRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.ChangeRole(r.Context(), id, domain.UserRole(req.Role))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type auditEntryResponse struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actorId"`
	Action     string    `json:"action"`
	EntityID   string    `json:"entityId"`
	Detail     *string   `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// AuditTrail handles GET /admin/audit/{id} — review history of one entity.
func (h *AdminHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.audit.ListByEntity(r.Context(), id, queryInt(r, "limit", 50))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	items := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, auditEntryResponse{
			ID:         e.ID.String(),
			ActorID:    e.ActorID.String(),
			Action:     e.Action.String(),
			EntityID:   e.EntityID.String(),
			Detail:     e.Detail,
			OccurredAt: e.OccurredAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

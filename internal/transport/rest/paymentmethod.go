package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

type paymentMethodService interface {
	ListEnabled(ctx context.Context) ([]domain.PaymentMethod, error)
}

// PaymentMethodHandler serves the payment-method lookup endpoint.
type PaymentMethodHandler struct {
	svc paymentMethodService
	log *slog.Logger
}

// NewPaymentMethodHandler creates a PaymentMethodHandler.
func NewPaymentMethodHandler(svc paymentMethodService, logger *slog.Logger) *PaymentMethodHandler {
	return &PaymentMethodHandler{svc: svc, log: logger.With("handler", "paymentmethod")}
}

type paymentMethodResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// List handles GET /payment-methods.
func (h *PaymentMethodHandler) List(w http.ResponseWriter, r *http.Request) {
	methods, err := h.svc.ListEnabled(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	items := make([]paymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		items = append(items, paymentMethodResponse{Key: m.Key, Label: m.Label})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

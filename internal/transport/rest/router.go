package rest

import "net/http"

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	Contributions  *ContributionHandler
	Cases          *CaseHandler
	Admin          *AdminHandler
	PaymentMethods *PaymentMethodHandler
}

// NewRouter mounts every endpoint on a ServeMux. Authentication and
// authorization are enforced by the middleware chain and inside the
// services; the router only does dispatch.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	mux.HandleFunc("POST /api/v1/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Auth.Logout)

	mux.HandleFunc("GET /api/v1/payment-methods", h.PaymentMethods.List)

	mux.HandleFunc("GET /api/v1/contributions", h.Contributions.List)
	mux.HandleFunc("POST /api/v1/contributions", h.Contributions.Create)
	mux.HandleFunc("GET /api/v1/contributions/{id}", h.Contributions.Get)
	mux.HandleFunc("POST /api/v1/contributions/{id}/approve", h.Contributions.Approve)
	mux.HandleFunc("POST /api/v1/contributions/{id}/reject", h.Contributions.Reject)
	mux.HandleFunc("POST /api/v1/contributions/{id}/acknowledge", h.Contributions.Acknowledge)
	mux.HandleFunc("POST /api/v1/contributions/{id}/revise", h.Contributions.Revise)
	mux.HandleFunc("POST /api/v1/contributions/{id}/reply", h.Contributions.Reply)

	mux.HandleFunc("GET /api/v1/cases", h.Cases.List)
	mux.HandleFunc("GET /api/v1/cases/{id}", h.Cases.Get)
	mux.HandleFunc("POST /api/v1/cases/draft", h.Cases.EnsureDraft)
	mux.HandleFunc("PATCH /api/v1/cases/{id}", h.Cases.Update)
	mux.HandleFunc("POST /api/v1/cases/{id}/publish", h.Cases.Publish)
	mux.HandleFunc("POST /api/v1/cases/{id}/close", h.Cases.Close)
	mux.HandleFunc("DELETE /api/v1/cases/{id}", h.Cases.Delete)

	mux.HandleFunc("GET /api/v1/admin/users", h.Admin.ListUsers)
	mux.HandleFunc("PATCH /api/v1/admin/users/{id}/role", h.Admin.ChangeRole)
	mux.HandleFunc("GET /api/v1/admin/audit/{id}", h.Admin.AuditTrail)

	return mux
}

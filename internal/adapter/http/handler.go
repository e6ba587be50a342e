package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"log/slog"

	"stagefund/internal/core/port"
)

// Handler contains dependencies and routes. It is the inbound HTTP
// adapter: it decodes requests, pulls the caller identity asserted
// upstream and delegates to the funding usecase. Routes are registered on
// a chi.Router for convenient method handling.
type Handler struct {
	svc    port.FundingUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc port.FundingUseCase, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.handleOpenCampaign)
			r.Get("/{id}", h.handleGetCampaign)
			r.Post("/{id}/contributions", h.handleContribute)
			r.Get("/{id}/contributions", h.handleListContributions)
			r.Post("/{id}/finalize", h.handleFinalizeCampaign)
			r.Post("/{id}/refund", h.handleClaimRefund)
			r.Post("/{id}/budgets", h.handleSubmitBudget)
			r.Get("/{id}/budgets/active", h.handleGetActiveBudget)
			r.Post("/{id}/distribution", h.handleCalculateDistribution)
			r.Post("/{id}/claims/contribution", h.handleClaimContributorShare)
			r.Post("/{id}/claims/operator", h.handleClaimOperatorShare)
		})
		r.Route("/budgets", func(r chi.Router) {
			r.Post("/{id}/votes", h.handleCastVote)
			r.Post("/{id}/finalize", h.handleFinalizeVote)
			r.Post("/{id}/milestones/{index}/release", h.handleReleaseMilestone)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

// callerID returns the verified caller identity asserted by the upstream
// identity layer. An empty value means the request is anonymous.
func callerID(r *http.Request) string {
	return r.Header.Get("X-Caller-Id")
}

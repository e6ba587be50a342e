package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stagefund/internal/core/domain"
)

type campaignResponse struct {
	ID                   uuid.UUID `json:"id"`
	Operator             string    `json:"operator"`
	FundingGoal          int64     `json:"funding_goal"`
	Deadline             time.Time `json:"deadline"`
	Raised               int64     `json:"raised"`
	Contributors         int32     `json:"contributors"`
	Status               string    `json:"status"`
	Expenses             int64     `json:"expenses"`
	Revenue              int64     `json:"revenue"`
	ContributorPool      int64     `json:"contributor_pool"`
	OperatorPool         int64     `json:"operator_pool"`
	PlatformPool         int64     `json:"platform_pool"`
	DistributionComputed bool      `json:"distribution_computed"`
	OperatorClaimed      bool      `json:"operator_claimed"`
	Escrow               int64     `json:"escrow"`
	CreatedAt            time.Time `json:"created_at"`
}

func toCampaignResponse(c *domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:                   c.ID,
		Operator:             c.Operator,
		FundingGoal:          c.FundingGoal,
		Deadline:             c.Deadline,
		Raised:               c.Raised,
		Contributors:         c.Contributors,
		Status:               string(c.Status),
		Expenses:             c.Expenses,
		Revenue:              c.Revenue,
		ContributorPool:      c.ContributorPool,
		OperatorPool:         c.OperatorPool,
		PlatformPool:         c.PlatformPool,
		DistributionComputed: c.DistributionComputed,
		OperatorClaimed:      c.OperatorClaimed,
		Escrow:               c.Escrow,
		CreatedAt:            c.CreatedAt,
	}
}

type contributionResponse struct {
	CampaignID    uuid.UUID `json:"campaign_id"`
	Contributor   string    `json:"contributor"`
	Amount        int64     `json:"amount"`
	ContributedAt time.Time `json:"contributed_at"`
	Refunded      bool      `json:"refunded"`
	ProfitShare   int64     `json:"profit_share"`
	ProfitClaimed bool      `json:"profit_claimed"`
}

func toContributionResponse(ct *domain.Contribution) contributionResponse {
	return contributionResponse{
		CampaignID:    ct.CampaignID,
		Contributor:   ct.Contributor,
		Amount:        ct.Amount,
		ContributedAt: ct.ContributedAt,
		Refunded:      ct.Refunded,
		ProfitShare:   ct.ProfitShare,
		ProfitClaimed: ct.ProfitClaimed,
	}
}

// campaignID binds the {id} path parameter.
func campaignID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// handleOpenCampaign creates a new campaign for the calling operator.
func (h *Handler) handleOpenCampaign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FundingGoal int64     `json:"funding_goal"`
		Deadline    time.Time `json:"deadline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	caller := callerID(r)
	if caller == "" {
		http.Error(w, "missing caller identity", http.StatusForbidden)
		return
	}
	c, err := h.svc.OpenCampaign(r.Context(), caller, req.FundingGoal, req.Deadline)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, toCampaignResponse(c))
}

// handleGetCampaign returns read-only campaign state.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	c, err := h.svc.GetCampaign(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toCampaignResponse(c))
}

// handleContribute pledges funds to an active campaign.
func (h *Handler) handleContribute(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	ct, err := h.svc.Contribute(r.Context(), id, callerID(r), req.Amount)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, toContributionResponse(ct))
}

// handleListContributions returns the contributions of a campaign.
func (h *Handler) handleListContributions(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	contributions, err := h.svc.ListContributions(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	out := make([]contributionResponse, len(contributions))
	for i := range contributions {
		out[i] = toContributionResponse(&contributions[i])
	}
	h.respondJSON(w, http.StatusOK, out)
}

// handleFinalizeCampaign resolves a campaign after its deadline.
func (h *Handler) handleFinalizeCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	c, err := h.svc.FinalizeCampaign(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toCampaignResponse(c))
}

// handleClaimRefund returns the caller's contribution from a failed
// campaign.
func (h *Handler) handleClaimRefund(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	amount, err := h.svc.ClaimRefund(r.Context(), id, callerID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]int64{"refunded": amount})
}

package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stagefund/internal/core/domain"
	"stagefund/internal/core/port"
)

type milestoneResponse struct {
	Description    string    `json:"description"`
	ReleasePercent int       `json:"release_percent"`
	UnlockAt       time.Time `json:"unlock_at"`
	Released       bool      `json:"released"`
	ReleasedAmount int64     `json:"released_amount"`
}

type budgetResponse struct {
	ID           uuid.UUID           `json:"id"`
	CampaignID   uuid.UUID           `json:"campaign_id"`
	Amount       int64               `json:"amount"`
	Description  string              `json:"description"`
	Milestones   []milestoneResponse `json:"milestones"`
	Status       string              `json:"status"`
	VotingEndsAt time.Time           `json:"voting_ends_at"`
	VotesFor     int64               `json:"votes_for"`
	VotesAgainst int64               `json:"votes_against"`
	Revision     int                 `json:"revision"`
	CreatedAt    time.Time           `json:"created_at"`
}

func toBudgetResponse(b *domain.Budget) budgetResponse {
	milestones := make([]milestoneResponse, len(b.Milestones))
	for i, m := range b.Milestones {
		milestones[i] = milestoneResponse{
			Description:    m.Description,
			ReleasePercent: m.ReleasePercent,
			UnlockAt:       m.UnlockAt,
			Released:       m.Released,
			ReleasedAmount: m.ReleasedAmount,
		}
	}
	return budgetResponse{
		ID:           b.ID,
		CampaignID:   b.CampaignID,
		Amount:       b.Amount,
		Description:  b.Description,
		Milestones:   milestones,
		Status:       string(b.Status),
		VotingEndsAt: b.VotingEndsAt,
		VotesFor:     b.VotesFor,
		VotesAgainst: b.VotesAgainst,
		Revision:     b.Revision,
		CreatedAt:    b.CreatedAt,
	}
}

// handleSubmitBudget submits a budget proposal, or a revision of a
// rejected one, for the caller's funded campaign.
func (h *Handler) handleSubmitBudget(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var req struct {
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
		Milestones  []struct {
			Description    string    `json:"description"`
			ReleasePercent int       `json:"release_percent"`
			UnlockAt       time.Time `json:"unlock_at"`
		} `json:"milestones"`
		VotingPeriodSeconds int64 `json:"voting_period_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	budgetReq := port.BudgetRequest{
		Amount:       req.Amount,
		Description:  req.Description,
		VotingPeriod: time.Duration(req.VotingPeriodSeconds) * time.Second,
	}
	for _, m := range req.Milestones {
		budgetReq.Milestones = append(budgetReq.Milestones, port.MilestoneRequest{
			Description:    m.Description,
			ReleasePercent: m.ReleasePercent,
			UnlockAt:       m.UnlockAt,
		})
	}
	b, err := h.svc.SubmitBudget(r.Context(), id, callerID(r), budgetReq)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, toBudgetResponse(b))
}

// handleGetActiveBudget returns the latest budget of a campaign.
func (h *Handler) handleGetActiveBudget(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	b, err := h.svc.GetActiveBudget(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toBudgetResponse(b))
}

// handleCastVote records the caller's ballot on a pending budget.
func (h *Handler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid budget id", http.StatusBadRequest)
		return
	}
	var req struct {
		Approve bool `json:"approve"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	v, err := h.svc.CastVote(r.Context(), id, callerID(r), req.Approve)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]any{
		"budget_id": v.BudgetID,
		"voter":     v.Voter,
		"power":     v.Power,
		"approve":   v.Approve,
		"voted_at":  v.VotedAt,
	})
}

// handleFinalizeVote resolves a budget vote after the window closes.
func (h *Handler) handleFinalizeVote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid budget id", http.StatusBadRequest)
		return
	}
	b, err := h.svc.FinalizeVote(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toBudgetResponse(b))
}

// handleReleaseMilestone releases one unlocked tranche of an approved
// budget to the calling operator.
func (h *Handler) handleReleaseMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid budget id", http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid milestone index", http.StatusBadRequest)
		return
	}
	amount, err := h.svc.ReleaseMilestone(r.Context(), id, callerID(r), index)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]int64{"released": amount})
}

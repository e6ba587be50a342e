package httpadapter

import (
	"encoding/json"
	"net/http"
)

// handleCalculateDistribution records the revenue reported by the
// ticketing collaborator and computes the profit pools.
func (h *Handler) handleCalculateDistribution(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var req struct {
		Revenue int64 `json:"revenue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	c, err := h.svc.CalculateDistribution(r.Context(), id, req.Revenue)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toCampaignResponse(c))
}

// handleClaimContributorShare pays the caller's profit share exactly
// once.
func (h *Handler) handleClaimContributorShare(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	amount, err := h.svc.ClaimContributorShare(r.Context(), id, callerID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]int64{"claimed": amount})
}

// handleClaimOperatorShare pays the operator pool to the calling
// operator exactly once.
func (h *Handler) handleClaimOperatorShare(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	amount, err := h.svc.ClaimOperatorShare(r.Context(), id, callerID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]int64{"claimed": amount})
}

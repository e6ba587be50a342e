package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"stagefund/internal/core/domain"
)

// statusFor maps the domain error taxonomy onto HTTP status codes.
// Validation problems are 400, authorization 403, missing entities 404,
// idempotency replays 409 and lifecycle/conservation rejections 422.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidParameters),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidMilestoneSchedule),
		errors.Is(err, domain.ErrDescriptionTooLong):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrNotAContributor):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrAlreadyRefunded),
		errors.Is(err, domain.ErrAlreadyClaimed),
		errors.Is(err, domain.ErrAlreadyFinalized),
		errors.Is(err, domain.ErrDuplicateContribution),
		errors.Is(err, domain.ErrDistributionAlreadyComputed),
		errors.Is(err, domain.ErrMilestoneAlreadyReleased),
		errors.Is(err, domain.ErrActiveBudgetExists),
		errors.Is(err, domain.ErrMaxRevisionsReached):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCampaignClosed),
		errors.Is(err, domain.ErrCampaignNotFunded),
		errors.Is(err, domain.ErrCampaignNotFailed),
		errors.Is(err, domain.ErrCampaignNotCompleted),
		errors.Is(err, domain.ErrDeadlineNotReached),
		errors.Is(err, domain.ErrVotingWindowClosed),
		errors.Is(err, domain.ErrVotingPeriodNotEnded),
		errors.Is(err, domain.ErrBudgetNotPending),
		errors.Is(err, domain.ErrBudgetNotApproved),
		errors.Is(err, domain.ErrBudgetNotRevisable),
		errors.Is(err, domain.ErrMilestoneNotUnlocked),
		errors.Is(err, domain.ErrDistributionNotComputed),
		errors.Is(err, domain.ErrExceedsRaisedFunds),
		errors.Is(err, domain.ErrInsufficientEscrowBalance),
		errors.Is(err, domain.ErrArithmeticOverflow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes the error with its mapped status. Internal errors are
// logged and hidden behind a generic message.
func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("internal error", slog.Any("error", err))
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

// respondJSON encodes v as the response body.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

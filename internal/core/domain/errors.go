package domain

import "errors"

// Error taxonomy for the funding engine. Every mutating operation reports
// its failure through one of these sentinels (possibly wrapped) before any
// state change is committed. Adapters map them to transport codes.
var (
	// Validation errors: bad input shape or range, rejected up front.
	ErrInvalidParameters        = errors.New("invalid parameters")
	ErrInvalidAmount            = errors.New("amount must be greater than zero")
	ErrInvalidMilestoneSchedule = errors.New("milestone percentages must sum to 100")
	ErrDescriptionTooLong       = errors.New("description too long")

	// State errors: the operation is not valid in the current lifecycle state.
	ErrCampaignClosed              = errors.New("campaign is closed for contributions")
	ErrCampaignNotFunded           = errors.New("campaign is not funded")
	ErrCampaignNotFailed           = errors.New("campaign has not failed")
	ErrCampaignNotCompleted        = errors.New("campaign is not completed")
	ErrAlreadyFinalized            = errors.New("campaign already finalized")
	ErrDeadlineNotReached          = errors.New("campaign deadline has not passed")
	ErrVotingWindowClosed          = errors.New("voting window has closed")
	ErrVotingPeriodNotEnded        = errors.New("voting period has not ended")
	ErrBudgetNotPending            = errors.New("budget is not pending")
	ErrBudgetNotApproved           = errors.New("budget is not approved")
	ErrBudgetNotRevisable          = errors.New("budget cannot be revised")
	ErrMaxRevisionsReached         = errors.New("maximum budget revisions reached")
	ErrActiveBudgetExists          = errors.New("campaign already has an active budget")
	ErrMilestoneNotUnlocked        = errors.New("milestone is not unlocked yet")
	ErrMilestoneAlreadyReleased    = errors.New("milestone already released")
	ErrDistributionAlreadyComputed = errors.New("distribution already computed")
	ErrDistributionNotComputed     = errors.New("distribution not computed")

	// Authorization errors.
	ErrUnauthorized    = errors.New("caller is not authorized for this operation")
	ErrNotAContributor = errors.New("caller is not a contributor to this campaign")

	// Conservation errors.
	ErrExceedsRaisedFunds        = errors.New("budget exceeds raised funds")
	ErrInsufficientEscrowBalance = errors.New("insufficient escrow balance")
	ErrArithmeticOverflow        = errors.New("arithmetic overflow")

	// Idempotency errors.
	ErrAlreadyVoted          = errors.New("already voted on this budget")
	ErrAlreadyRefunded       = errors.New("contribution already refunded")
	ErrAlreadyClaimed        = errors.New("profit share already claimed")
	ErrDuplicateContribution = errors.New("contributor already contributed to this campaign")

	ErrNotFound = errors.New("not found")
)

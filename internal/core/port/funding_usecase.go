package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stagefund/internal/core/domain"
)

// FundingUseCase is the primary inbound port of the engine. Callers are
// identified by an opaque caller id asserted by the identity collaborator;
// the usecase performs the ownership checks itself.
type FundingUseCase interface {
	// OpenCampaign creates a campaign in Pending status for the calling
	// operator.
	OpenCampaign(ctx context.Context, operator string, goal int64, deadline time.Time) (*domain.Campaign, error)
	// GetCampaign returns read-only campaign state for dashboards.
	GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	// ListContributions returns the contributions of a campaign.
	ListContributions(ctx context.Context, campaignID uuid.UUID) ([]domain.Contribution, error)

	// Contribute pledges amount to an active campaign on behalf of caller.
	Contribute(ctx context.Context, campaignID uuid.UUID, caller string, amount int64) (*domain.Contribution, error)
	// FinalizeCampaign resolves a campaign once its deadline has passed.
	// Anyone may call it.
	FinalizeCampaign(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error)
	// ClaimRefund returns the caller's full contribution from a failed
	// campaign, once.
	ClaimRefund(ctx context.Context, campaignID uuid.UUID, caller string) (int64, error)

	// SubmitBudget submits a new budget proposal, or a revision of a
	// rejected one, for the caller's funded campaign.
	SubmitBudget(ctx context.Context, campaignID uuid.UUID, caller string, req BudgetRequest) (*domain.Budget, error)
	// GetActiveBudget returns the latest budget of a campaign.
	GetActiveBudget(ctx context.Context, campaignID uuid.UUID) (*domain.Budget, error)
	// CastVote records the caller's ballot on a pending budget. Voting
	// power equals the caller's contribution amount.
	CastVote(ctx context.Context, budgetID uuid.UUID, caller string, approve bool) (*domain.Vote, error)
	// FinalizeVote resolves a budget vote after the window closes. Anyone
	// may call it.
	FinalizeVote(ctx context.Context, budgetID uuid.UUID) (*domain.Budget, error)
	// ReleaseMilestone releases one unlocked tranche of an approved budget
	// to the calling operator and returns the released amount.
	ReleaseMilestone(ctx context.Context, budgetID uuid.UUID, caller string, index int) (int64, error)

	// CalculateDistribution records the revenue reported by the ticketing
	// collaborator and computes the profit pools, once per campaign.
	CalculateDistribution(ctx context.Context, campaignID uuid.UUID, revenue int64) (*domain.Campaign, error)
	// ClaimContributorShare pays the caller's profit share exactly once.
	ClaimContributorShare(ctx context.Context, campaignID uuid.UUID, caller string) (int64, error)
	// ClaimOperatorShare pays the operator pool to the calling operator
	// exactly once.
	ClaimOperatorShare(ctx context.Context, campaignID uuid.UUID, caller string) (int64, error)
}

// BudgetRequest is the transport-level shape of a budget submission. It is
// a DTO; validation happens in the domain.
type BudgetRequest struct {
	Amount       int64
	Description  string
	Milestones   []MilestoneRequest
	VotingPeriod time.Duration
}

// MilestoneRequest is one milestone in a budget submission.
type MilestoneRequest struct {
	Description    string
	ReleasePercent int
	UnlockAt       time.Time
}

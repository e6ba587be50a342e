package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stagefund/internal/core/domain"
)

// FundingRepository is the persistence outbound port for the funding
// engine. Every mutating method is an atomic, serializable transaction:
// the operation's checks and state changes either all commit or none do,
// and partial application is never observable. Implementations return the
// domain error taxonomy (possibly wrapped) and domain.ErrNotFound for
// missing entities.
type FundingRepository interface {
	// CreateCampaign stores a freshly opened campaign.
	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	// GetCampaign returns a campaign by id.
	GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	// GetContribution returns one contributor's record for a campaign.
	GetContribution(ctx context.Context, campaignID uuid.UUID, contributor string) (*domain.Contribution, error)
	// ListContributions returns all contributions of a campaign.
	ListContributions(ctx context.Context, campaignID uuid.UUID) ([]domain.Contribution, error)

	// Contribute creates the contribution record and moves amount into the
	// campaign escrow, incrementing the raised total and contributor count
	// under one commit. A second contribution by the same contributor fails
	// with domain.ErrDuplicateContribution.
	Contribute(ctx context.Context, campaignID uuid.UUID, contributor string, amount int64, now time.Time) (*domain.Contribution, error)
	// FinalizeCampaign resolves a pending campaign after its deadline and
	// returns the updated record.
	FinalizeCampaign(ctx context.Context, campaignID uuid.UUID, now time.Time) (*domain.Campaign, error)
	// ClaimRefund pays back a contributor's full original amount from
	// escrow, once. It returns the refunded amount.
	ClaimRefund(ctx context.Context, campaignID uuid.UUID, contributor string) (int64, error)

	// SubmitBudget validates the proposal against the campaign inside the
	// transaction, derives the revision number from the latest stored
	// budget and stores the new pending budget.
	SubmitBudget(ctx context.Context, campaignID uuid.UUID, p domain.BudgetProposal, now time.Time) (*domain.Budget, error)
	// GetBudget returns a budget with its milestones.
	GetBudget(ctx context.Context, id uuid.UUID) (*domain.Budget, error)
	// GetLatestBudget returns the highest-revision budget of a campaign.
	GetLatestBudget(ctx context.Context, campaignID uuid.UUID) (*domain.Budget, error)
	// CastVote records one contributor ballot and accumulates its power
	// into the tally under one commit.
	CastVote(ctx context.Context, budgetID uuid.UUID, voter string, approve bool, now time.Time) (*domain.Vote, error)
	// FinalizeVote resolves a pending budget after its voting window.
	FinalizeVote(ctx context.Context, budgetID uuid.UUID, now time.Time) (*domain.Budget, error)

	// ReleaseMilestone moves one unlocked tranche from campaign escrow to
	// the operator and adds it to the expense total. It returns the
	// released amount and the updated budget.
	ReleaseMilestone(ctx context.Context, budgetID uuid.UUID, index int, now time.Time) (*domain.Budget, int64, error)

	// CalculateDistribution records the reported revenue and computes the
	// three profit pools, once per campaign.
	CalculateDistribution(ctx context.Context, campaignID uuid.UUID, revenue int64, now time.Time) (*domain.Campaign, error)
	// ClaimContributorShare pays a contributor's proportional share from
	// escrow exactly once and returns the transferred amount. The claimed
	// flag is set before the balance moves.
	ClaimContributorShare(ctx context.Context, campaignID uuid.UUID, contributor string) (int64, error)
	// ClaimOperatorShare pays the operator pool exactly once.
	ClaimOperatorShare(ctx context.Context, campaignID uuid.UUID) (int64, error)
}

package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stagefund/internal/core/domain"
	"stagefund/internal/core/port"
	"stagefund/internal/events"
)

// FundingUseCase implements the engine's inbound port. It validates
// input, performs the ownership assertions, reads time from the injected
// clock and emits domain events after the repository commit. All state
// transitions happen inside the repository's atomic operations.
type FundingUseCase struct {
	repo      port.FundingRepository
	clock     domain.Clock
	publisher events.Publisher
}

// NewFundingUseCase creates a usecase over the given repository. The
// clock is injectable for deterministic tests.
func NewFundingUseCase(repo port.FundingRepository, clock domain.Clock, publisher events.Publisher) *FundingUseCase {
	return &FundingUseCase{repo: repo, clock: clock, publisher: publisher}
}

// OpenCampaign creates a campaign in Pending status for the operator.
func (u *FundingUseCase) OpenCampaign(ctx context.Context, operator string, goal int64, deadline time.Time) (*domain.Campaign, error) {
	c, err := domain.NewCampaign(uuid.New(), operator, goal, deadline, u.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := u.repo.CreateCampaign(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCampaign returns read-only campaign state.
func (u *FundingUseCase) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	return u.repo.GetCampaign(ctx, id)
}

// ListContributions returns all contributions of a campaign.
func (u *FundingUseCase) ListContributions(ctx context.Context, campaignID uuid.UUID) ([]domain.Contribution, error) {
	return u.repo.ListContributions(ctx, campaignID)
}

// Contribute pledges amount to an active campaign on behalf of caller.
func (u *FundingUseCase) Contribute(ctx context.Context, campaignID uuid.UUID, caller string, amount int64) (*domain.Contribution, error) {
	if caller == "" {
		return nil, domain.ErrUnauthorized
	}
	now := u.clock.Now()
	ct, err := u.repo.Contribute(ctx, campaignID, caller, amount, now)
	if err != nil {
		return nil, err
	}
	u.publisher.Publish(ctx, domain.Event{
		Type:       domain.EventContributionReceived,
		CampaignID: campaignID,
		Party:      caller,
		Amount:     amount,
		OccurredAt: now,
	})
	return ct, nil
}

// FinalizeCampaign resolves a pending campaign after its deadline. Anyone
// may call it; the outcome depends only on recorded state.
func (u *FundingUseCase) FinalizeCampaign(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error) {
	now := u.clock.Now()
	c, err := u.repo.FinalizeCampaign(ctx, campaignID, now)
	if err != nil {
		return nil, err
	}
	evType := domain.EventCampaignFailed
	if c.Status == domain.CampaignFunded {
		evType = domain.EventCampaignFunded
	}
	u.publisher.Publish(ctx, domain.Event{
		Type:       evType,
		CampaignID: campaignID,
		Amount:     c.Raised,
		OccurredAt: now,
	})
	return c, nil
}

// ClaimRefund returns the caller's full contribution from a failed
// campaign, once.
func (u *FundingUseCase) ClaimRefund(ctx context.Context, campaignID uuid.UUID, caller string) (int64, error) {
	if caller == "" {
		return 0, domain.ErrUnauthorized
	}
	amount, err := u.repo.ClaimRefund(ctx, campaignID, caller)
	if err != nil {
		return 0, err
	}
	u.publisher.Publish(ctx, domain.Event{
		Type:       domain.EventRefundClaimed,
		CampaignID: campaignID,
		Party:      caller,
		Amount:     amount,
		OccurredAt: u.clock.Now(),
	})
	return amount, nil
}

// SubmitBudget submits a budget proposal, or a revision of a rejected
// one, for the caller's funded campaign.
func (u *FundingUseCase) SubmitBudget(ctx context.Context, campaignID uuid.UUID, caller string, req port.BudgetRequest) (*domain.Budget, error) {
	c, err := u.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	// The operator is immutable, so this check stays valid through the
	// repository transaction below.
	if c.Operator != caller {
		return nil, domain.ErrUnauthorized
	}

	milestones := make([]domain.MilestoneProposal, len(req.Milestones))
	for i, m := range req.Milestones {
		milestones[i] = domain.MilestoneProposal{
			Description:    m.Description,
			ReleasePercent: m.ReleasePercent,
			UnlockAt:       m.UnlockAt,
		}
	}
	now := u.clock.Now()
	b, err := u.repo.SubmitBudget(ctx, campaignID, domain.BudgetProposal{
		ID:           uuid.New(),
		Amount:       req.Amount,
		Description:  req.Description,
		Milestones:   milestones,
		VotingPeriod: req.VotingPeriod,
	}, now)
	if err != nil {
		return nil, err
	}
	u.publisher.Publish(ctx, domain.Event{
		Type:       domain.EventBudgetSubmitted,
		CampaignID: campaignID,
		BudgetID:   b.ID,
		Amount:     b.Amount,
		OccurredAt: now,
	})
	return b, nil
}

// GetActiveBudget returns the latest budget of a campaign.
func (u *FundingUseCase) GetActiveBudget(ctx context.Context, campaignID uuid.UUID) (*domain.Budget, error) {
	return u.repo.GetLatestBudget(ctx, campaignID)
}

// CastVote records the caller's ballot on a pending budget.
func (u *FundingUseCase) CastVote(ctx context.Context, budgetID uuid.UUID, caller string, approve bool) (*domain.Vote, error) {
	if caller == "" {
		return nil, domain.ErrUnauthorized
	}
	return u.repo.CastVote(ctx, budgetID, caller, approve, u.clock.Now())
}

// FinalizeVote resolves a budget vote after the window closes.
func (u *FundingUseCase) FinalizeVote(ctx context.Context, budgetID uuid.UUID) (*domain.Budget, error) {
	now := u.clock.Now()
	b, err := u.repo.FinalizeVote(ctx, budgetID, now)
	if err != nil {
		return nil, err
	}
	evType := domain.EventBudgetRejected
	if b.Status == domain.BudgetApproved {
		evType = domain.EventBudgetApproved
	}
	u.publisher.Publish(ctx, domain.Event{
		Type:       evType,
		CampaignID: b.CampaignID,
		BudgetID:   b.ID,
		Amount:     b.VotesFor,
		OccurredAt: now,
	})
	return b, nil
}

// ReleaseMilestone releases one unlocked tranche of an approved budget to
// the calling operator.
func (u *FundingUseCase) ReleaseMilestone(ctx context.Context, budgetID uuid.UUID, caller string, index int) (int64, error) {
	b, err := u.repo.GetBudget(ctx, budgetID)
	if err != nil {
		return 0, err
	}
	c, err := u.repo.GetCampaign(ctx, b.CampaignID)
	if err != nil {
		return 0, err
	}
	if c.Operator != caller {
		return 0, domain.ErrUnauthorized
	}

	now := u.clock.Now()
	b, amount, err := u.repo.ReleaseMilestone(ctx, budgetID, index, now)
	if err != nil {
		return 0, err
	}
	u.publisher.Publish(ctx, domain.Event{
		Type:       domain.EventMilestoneReleased,
		CampaignID: b.CampaignID,
		BudgetID:   b.ID,
		Party:      caller,
		Amount:     amount,
		OccurredAt: now,
	})
	return amount, nil
}

// CalculateDistribution records the revenue reported by the ticketing
// collaborator and computes the profit pools, once per campaign.
func (u *FundingUseCase) CalculateDistribution(ctx context.Context, campaignID uuid.UUID, revenue int64) (*domain.Campaign, error) {
	now := u.clock.Now()
	c, err := u.repo.CalculateDistribution(ctx, campaignID, revenue, now)
	if err != nil {
		return nil, err
	}
	u.publisher.Publish(ctx, domain.Event{
		Type:       domain.EventDistributionCalculated,
		CampaignID: campaignID,
		Amount:     c.ContributorPool + c.OperatorPool + c.PlatformPool,
		OccurredAt: now,
	})
	return c, nil
}

// ClaimContributorShare pays the caller's profit share exactly once. A
// zero share is a valid claim that transfers nothing but still consumes
// the claim.
func (u *FundingUseCase) ClaimContributorShare(ctx context.Context, campaignID uuid.UUID, caller string) (int64, error) {
	if caller == "" {
		return 0, domain.ErrUnauthorized
	}
	share, err := u.repo.ClaimContributorShare(ctx, campaignID, caller)
	if err != nil {
		return 0, err
	}
	u.publisher.Publish(ctx, domain.Event{
		Type:       domain.EventShareClaimed,
		CampaignID: campaignID,
		Party:      caller,
		Amount:     share,
		OccurredAt: u.clock.Now(),
	})
	return share, nil
}

// ClaimOperatorShare pays the operator pool to the calling operator
// exactly once.
func (u *FundingUseCase) ClaimOperatorShare(ctx context.Context, campaignID uuid.UUID, caller string) (int64, error) {
	c, err := u.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if c.Operator != caller {
		return 0, domain.ErrUnauthorized
	}
	share, err := u.repo.ClaimOperatorShare(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	u.publisher.Publish(ctx, domain.Event{
		Type:       domain.EventShareClaimed,
		CampaignID: campaignID,
		Party:      caller,
		Amount:     share,
		OccurredAt: u.clock.Now(),
	})
	return share, nil
}

// Package memory implements the funding repository on in-process maps. It
// honours the same atomic-transaction contract as the postgres adapter: a
// single mutex serializes all operations, every mutation is applied to a
// private copy first and swapped in only after all checks pass.
//
// It backs the deterministic engine tests and works as a lightweight
// non-durable store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"stagefund/internal/core/domain"
)

type FundingRepository struct {
	mu sync.Mutex

	campaigns     map[uuid.UUID]*domain.Campaign
	contributions map[uuid.UUID]map[string]*domain.Contribution
	budgets       map[uuid.UUID]*domain.Budget
	// latestBudget points at the highest-revision budget per campaign.
	latestBudget map[uuid.UUID]uuid.UUID
	votes        map[uuid.UUID]map[string]*domain.Vote
}

func NewFundingRepository() *FundingRepository {
	return &FundingRepository{
		campaigns:     make(map[uuid.UUID]*domain.Campaign),
		contributions: make(map[uuid.UUID]map[string]*domain.Contribution),
		budgets:       make(map[uuid.UUID]*domain.Budget),
		latestBudget:  make(map[uuid.UUID]uuid.UUID),
		votes:         make(map[uuid.UUID]map[string]*domain.Vote),
	}
}

func cloneCampaign(c *domain.Campaign) *domain.Campaign {
	cp := *c
	return &cp
}

func cloneContribution(ct *domain.Contribution) *domain.Contribution {
	cp := *ct
	return &cp
}

func cloneBudget(b *domain.Budget) *domain.Budget {
	cp := *b
	cp.Milestones = make([]domain.Milestone, len(b.Milestones))
	copy(cp.Milestones, b.Milestones)
	return &cp
}

func (r *FundingRepository) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[c.ID] = cloneCampaign(c)
	return nil
}

func (r *FundingRepository) GetCampaign(_ context.Context, id uuid.UUID) (*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneCampaign(c), nil
}

func (r *FundingRepository) GetContribution(_ context.Context, campaignID uuid.UUID, contributor string) (*domain.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ct, ok := r.contributions[campaignID][contributor]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneContribution(ct), nil
}

func (r *FundingRepository) ListContributions(_ context.Context, campaignID uuid.UUID) ([]domain.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Contribution, 0, len(r.contributions[campaignID]))
	for _, ct := range r.contributions[campaignID] {
		out = append(out, *ct)
	}
	return out, nil
}

func (r *FundingRepository) Contribute(_ context.Context, campaignID uuid.UUID, contributor string, amount int64, now time.Time) (*domain.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.campaigns[campaignID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if _, exists := r.contributions[campaignID][contributor]; exists {
		return nil, domain.ErrDuplicateContribution
	}

	c := cloneCampaign(stored)
	if err := c.AcceptContribution(amount, now); err != nil {
		return nil, err
	}
	ct := &domain.Contribution{
		CampaignID:    campaignID,
		Contributor:   contributor,
		Amount:        amount,
		ContributedAt: now,
	}

	r.campaigns[campaignID] = c
	if r.contributions[campaignID] == nil {
		r.contributions[campaignID] = make(map[string]*domain.Contribution)
	}
	r.contributions[campaignID][contributor] = ct
	return cloneContribution(ct), nil
}

func (r *FundingRepository) FinalizeCampaign(_ context.Context, campaignID uuid.UUID, now time.Time) (*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.campaigns[campaignID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := cloneCampaign(stored)
	if err := c.Finalize(now); err != nil {
		return nil, err
	}
	r.campaigns[campaignID] = c
	return cloneCampaign(c), nil
}

func (r *FundingRepository) ClaimRefund(_ context.Context, campaignID uuid.UUID, contributor string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	storedCampaign, ok := r.campaigns[campaignID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	storedContribution, ok := r.contributions[campaignID][contributor]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if !storedCampaign.RefundsAvailable() {
		return 0, domain.ErrCampaignNotFailed
	}
	if !storedContribution.CanRefund() {
		return 0, domain.ErrAlreadyRefunded
	}

	c := cloneCampaign(storedCampaign)
	if err := c.DebitEscrow(storedContribution.Amount); err != nil {
		return 0, err
	}
	ct := cloneContribution(storedContribution)
	ct.Refunded = true

	r.campaigns[campaignID] = c
	r.contributions[campaignID][contributor] = ct
	return ct.Amount, nil
}

func (r *FundingRepository) SubmitBudget(_ context.Context, campaignID uuid.UUID, p domain.BudgetProposal, now time.Time) (*domain.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.campaigns[campaignID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	revision := 0
	if latestID, ok := r.latestBudget[campaignID]; ok {
		latest := r.budgets[latestID]
		if latest.Active() {
			return nil, domain.ErrActiveBudgetExists
		}
		if latest.Status == domain.BudgetExecuted {
			return nil, domain.ErrActiveBudgetExists
		}
		if !latest.CanRevise() {
			return nil, domain.ErrMaxRevisionsReached
		}
		revision = latest.Revision + 1
	}

	b, err := domain.NewBudget(c, p, revision, now)
	if err != nil {
		return nil, err
	}
	r.budgets[b.ID] = cloneBudget(b)
	r.latestBudget[campaignID] = b.ID
	return b, nil
}

func (r *FundingRepository) GetBudget(_ context.Context, id uuid.UUID) (*domain.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.budgets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneBudget(b), nil
}

func (r *FundingRepository) GetLatestBudget(_ context.Context, campaignID uuid.UUID) (*domain.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.latestBudget[campaignID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneBudget(r.budgets[id]), nil
}

func (r *FundingRepository) CastVote(_ context.Context, budgetID uuid.UUID, voter string, approve bool, now time.Time) (*domain.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	storedBudget, ok := r.budgets[budgetID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	contribution, ok := r.contributions[storedBudget.CampaignID][voter]
	if !ok {
		return nil, domain.ErrNotAContributor
	}
	if _, voted := r.votes[budgetID][voter]; voted {
		return nil, domain.ErrAlreadyVoted
	}

	b := cloneBudget(storedBudget)
	if err := b.RecordVote(contribution.VotingPower(), approve, now); err != nil {
		return nil, err
	}
	v := &domain.Vote{
		BudgetID: budgetID,
		Voter:    voter,
		Power:    contribution.VotingPower(),
		Approve:  approve,
		VotedAt:  now,
	}

	r.budgets[budgetID] = b
	if r.votes[budgetID] == nil {
		r.votes[budgetID] = make(map[string]*domain.Vote)
	}
	r.votes[budgetID][voter] = v
	vc := *v
	return &vc, nil
}

func (r *FundingRepository) FinalizeVote(_ context.Context, budgetID uuid.UUID, now time.Time) (*domain.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.budgets[budgetID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b := cloneBudget(stored)
	if err := b.FinalizeVoting(now); err != nil {
		return nil, err
	}
	r.budgets[budgetID] = b
	return cloneBudget(b), nil
}

func (r *FundingRepository) ReleaseMilestone(_ context.Context, budgetID uuid.UUID, index int, now time.Time) (*domain.Budget, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	storedBudget, ok := r.budgets[budgetID]
	if !ok {
		return nil, 0, domain.ErrNotFound
	}
	storedCampaign, ok := r.campaigns[storedBudget.CampaignID]
	if !ok {
		return nil, 0, domain.ErrNotFound
	}

	b := cloneBudget(storedBudget)
	amount, err := b.ReleaseMilestone(index, now)
	if err != nil {
		return nil, 0, err
	}
	c := cloneCampaign(storedCampaign)
	if err := c.DebitEscrow(amount); err != nil {
		return nil, 0, err
	}
	if err := c.AddExpense(amount); err != nil {
		return nil, 0, err
	}

	r.budgets[budgetID] = b
	r.campaigns[c.ID] = c
	return cloneBudget(b), amount, nil
}

func (r *FundingRepository) CalculateDistribution(_ context.Context, campaignID uuid.UUID, revenue int64, now time.Time) (*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.campaigns[campaignID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := cloneCampaign(stored)
	if err := c.ComputeDistribution(revenue, now); err != nil {
		return nil, err
	}
	r.campaigns[campaignID] = c
	return cloneCampaign(c), nil
}

func (r *FundingRepository) ClaimContributorShare(_ context.Context, campaignID uuid.UUID, contributor string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	storedCampaign, ok := r.campaigns[campaignID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	storedContribution, ok := r.contributions[campaignID][contributor]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if !storedCampaign.DistributionComputed {
		return 0, domain.ErrDistributionNotComputed
	}
	if storedContribution.ProfitClaimed {
		return 0, domain.ErrAlreadyClaimed
	}

	share, err := storedCampaign.ContributorShare(storedContribution.Amount)
	if err != nil {
		return 0, err
	}

	// Claimed flag flips before the balance moves; a zero share is a valid
	// no-op claim.
	ct := cloneContribution(storedContribution)
	ct.ProfitShare = share
	ct.ProfitClaimed = true
	c := cloneCampaign(storedCampaign)
	if err := c.DebitEscrow(share); err != nil {
		return 0, err
	}

	r.contributions[campaignID][contributor] = ct
	r.campaigns[campaignID] = c
	return share, nil
}

func (r *FundingRepository) ClaimOperatorShare(_ context.Context, campaignID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.campaigns[campaignID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if !stored.DistributionComputed {
		return 0, domain.ErrDistributionNotComputed
	}
	if stored.OperatorClaimed {
		return 0, domain.ErrAlreadyClaimed
	}

	c := cloneCampaign(stored)
	c.OperatorClaimed = true
	if err := c.DebitEscrow(c.OperatorPool); err != nil {
		return 0, err
	}

	r.campaigns[campaignID] = c
	return c.OperatorPool, nil
}

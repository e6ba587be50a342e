package domain

import (
	"time"

	"github.com/google/uuid"
)

// CampaignStatus is the lifecycle state of a campaign. Transitions are
// one-directional: Pending -> Funded | Failed, Funded -> Completed.
type CampaignStatus string

const (
	CampaignPending   CampaignStatus = "pending"
	CampaignFunded    CampaignStatus = "funded"
	CampaignFailed    CampaignStatus = "failed"
	CampaignCompleted CampaignStatus = "completed"
)

// Profit split ratios in whole percent. The integer-division remainder is
// allocated to the contributor pool so the three pools always sum to the
// exact profit.
const (
	ContributorPoolPercent = 60
	OperatorPoolPercent    = 35
	PlatformPoolPercent    = 5
)

// Campaign is a funding round. Money is tracked in the smallest currency
// unit. Escrow holds every contribution until it is disbursed through a
// milestone, refunded, or claimed as a profit share.
type Campaign struct {
	ID           uuid.UUID
	Operator     string
	FundingGoal  int64
	Deadline     time.Time
	Raised       int64
	Contributors int32
	Status       CampaignStatus

	Expenses int64
	Revenue  int64

	ContributorPool      int64
	OperatorPool         int64
	PlatformPool         int64
	DistributionComputed bool
	OperatorClaimed      bool

	Escrow int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCampaign validates the funding goal and deadline and returns a
// campaign in Pending status.
func NewCampaign(id uuid.UUID, operator string, goal int64, deadline, now time.Time) (*Campaign, error) {
	if operator == "" {
		return nil, ErrInvalidParameters
	}
	if goal <= 0 {
		return nil, ErrInvalidParameters
	}
	if !deadline.After(now) {
		return nil, ErrInvalidParameters
	}
	return &Campaign{
		ID:          id,
		Operator:    operator,
		FundingGoal: goal,
		Deadline:    deadline,
		Status:      CampaignPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsActive reports whether the campaign still accepts contributions.
func (c *Campaign) IsActive() bool { return c.Status == CampaignPending }

// GoalReached reports whether the funding goal has been met.
func (c *Campaign) GoalReached() bool { return c.Raised >= c.FundingGoal }

// DeadlinePassed reports whether the funding deadline is behind now.
func (c *Campaign) DeadlinePassed(now time.Time) bool { return now.After(c.Deadline) }

// RefundsAvailable reports whether contributors may claim refunds.
func (c *Campaign) RefundsAvailable() bool { return c.Status == CampaignFailed }

// AcceptContribution applies a contribution of amount to the campaign
// totals and escrow. The caller creates the Contribution record under the
// same atomic commit.
func (c *Campaign) AcceptContribution(amount int64, now time.Time) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !c.IsActive() || c.DeadlinePassed(now) {
		return ErrCampaignClosed
	}
	raised, err := addAmount(c.Raised, amount)
	if err != nil {
		return err
	}
	escrow, err := addAmount(c.Escrow, amount)
	if err != nil {
		return err
	}
	c.Raised = raised
	c.Escrow = escrow
	c.Contributors++
	c.UpdatedAt = now
	return nil
}

// Finalize resolves a pending campaign once its deadline has passed:
// Funded when the goal was reached, Failed otherwise. A second call is an
// explicit error, never a re-evaluation.
func (c *Campaign) Finalize(now time.Time) error {
	if c.Status != CampaignPending {
		return ErrAlreadyFinalized
	}
	if !c.DeadlinePassed(now) {
		return ErrDeadlineNotReached
	}
	if c.GoalReached() {
		c.Status = CampaignFunded
	} else {
		c.Status = CampaignFailed
	}
	c.UpdatedAt = now
	return nil
}

// ComputeDistribution records the externally reported revenue, computes
// profit = max(0, revenue - expenses) and partitions it 60/35/5 between the
// contributor, operator and platform pools. The division remainder goes to
// the contributor pool, so the pools sum to the profit exactly. Callable
// once per campaign; moves the campaign to Completed.
func (c *Campaign) ComputeDistribution(revenue int64, now time.Time) error {
	if revenue < 0 {
		return ErrInvalidAmount
	}
	if c.Status != CampaignFunded {
		return ErrCampaignNotFunded
	}
	if c.DistributionComputed {
		return ErrDistributionAlreadyComputed
	}

	var contributorPool, operatorPool, platformPool int64
	if revenue > c.Expenses {
		profit := revenue - c.Expenses
		var err error
		operatorPool, err = mulDiv(profit, OperatorPoolPercent, 100)
		if err != nil {
			return err
		}
		platformPool, err = mulDiv(profit, PlatformPoolPercent, 100)
		if err != nil {
			return err
		}
		// Contributor pool takes 60% plus whatever integer division left over.
		contributorPool = profit - operatorPool - platformPool
	}

	c.Revenue = revenue
	c.ContributorPool = contributorPool
	c.OperatorPool = operatorPool
	c.PlatformPool = platformPool

	c.DistributionComputed = true
	c.Status = CampaignCompleted
	c.UpdatedAt = now
	return nil
}

// ContributorShare returns the proportional slice of the contributor pool
// for a contribution of the given amount.
func (c *Campaign) ContributorShare(amount int64) (int64, error) {
	if c.Raised == 0 {
		return 0, nil
	}
	return mulDiv(c.ContributorPool, amount, c.Raised)
}

// DebitEscrow removes amount from the campaign's custodial balance,
// failing when the balance cannot cover it in full. Partial transfers are
// never made.
func (c *Campaign) DebitEscrow(amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if c.Escrow < amount {
		return ErrInsufficientEscrowBalance
	}
	c.Escrow -= amount
	return nil
}

// AddExpense accumulates a milestone release into the campaign's expense
// total.
func (c *Campaign) AddExpense(amount int64) error {
	expenses, err := addAmount(c.Expenses, amount)
	if err != nil {
		return err
	}
	c.Expenses = expenses
	return nil
}

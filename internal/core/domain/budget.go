package domain

import (
	"time"

	"github.com/google/uuid"
)

// BudgetStatus is the lifecycle state of a budget proposal.
// Pending -> Approved | Rejected; Approved -> Executed once every
// milestone has been released. Terminal budgets are never reused.
type BudgetStatus string

const (
	BudgetPending  BudgetStatus = "pending"
	BudgetApproved BudgetStatus = "approved"
	BudgetRejected BudgetStatus = "rejected"
	BudgetExecuted BudgetStatus = "executed"
)

const (
	// MaxBudgetRevisions bounds how often a rejected budget may be
	// resubmitted. Revision 0 is the initial proposal.
	MaxBudgetRevisions = 2

	MinMilestones = 1
	MaxMilestones = 10

	MaxBudgetDescriptionLen    = 200
	MaxMilestoneDescriptionLen = 100
)

// Milestone is one time-gated tranche of an approved budget.
type Milestone struct {
	Description    string
	ReleasePercent int
	UnlockAt       time.Time
	Released       bool
	ReleasedAmount int64
}

// Unlocked reports whether the milestone may be released at now.
func (m *Milestone) Unlocked(now time.Time) bool {
	return !now.Before(m.UnlockAt)
}

// Budget is an operator's spending proposal for a funded campaign,
// approved or rejected by contributor vote. Vote tallies are sums of
// contribution amounts, not head counts.
type Budget struct {
	ID          uuid.UUID
	CampaignID  uuid.UUID
	Amount      int64
	Description string
	Milestones  []Milestone
	Status      BudgetStatus

	VotingEndsAt time.Time
	VotesFor     int64
	VotesAgainst int64

	Revision  int
	CreatedAt time.Time
}

// BudgetProposal is the operator's input for a new budget or a revision.
type BudgetProposal struct {
	ID           uuid.UUID
	Amount       int64
	Description  string
	Milestones   []MilestoneProposal
	VotingPeriod time.Duration
}

// MilestoneProposal is one milestone in a budget proposal.
type MilestoneProposal struct {
	Description    string
	ReleasePercent int
	UnlockAt       time.Time
}

// NewBudget validates a proposal against its funded campaign and returns a
// pending budget with the given revision number. The milestone release
// percentages must sum to exactly 100.
func NewBudget(c *Campaign, p BudgetProposal, revision int, now time.Time) (*Budget, error) {
	if c.Status != CampaignFunded {
		return nil, ErrCampaignNotFunded
	}
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.Amount > c.Raised {
		return nil, ErrExceedsRaisedFunds
	}
	if len(p.Description) > MaxBudgetDescriptionLen {
		return nil, ErrDescriptionTooLong
	}
	if p.VotingPeriod <= 0 {
		return nil, ErrInvalidParameters
	}
	if len(p.Milestones) < MinMilestones || len(p.Milestones) > MaxMilestones {
		return nil, ErrInvalidMilestoneSchedule
	}
	total := 0
	for _, m := range p.Milestones {
		if m.ReleasePercent <= 0 {
			return nil, ErrInvalidMilestoneSchedule
		}
		if len(m.Description) > MaxMilestoneDescriptionLen {
			return nil, ErrDescriptionTooLong
		}
		total += m.ReleasePercent
	}
	if total != 100 {
		return nil, ErrInvalidMilestoneSchedule
	}

	milestones := make([]Milestone, len(p.Milestones))
	for i, m := range p.Milestones {
		milestones[i] = Milestone{
			Description:    m.Description,
			ReleasePercent: m.ReleasePercent,
			UnlockAt:       m.UnlockAt,
		}
	}
	return &Budget{
		ID:           p.ID,
		CampaignID:   c.ID,
		Amount:       p.Amount,
		Description:  p.Description,
		Milestones:   milestones,
		Status:       BudgetPending,
		VotingEndsAt: now.Add(p.VotingPeriod),
		Revision:     revision,
		CreatedAt:    now,
	}, nil
}

// VotingEnded reports whether the voting window has closed.
func (b *Budget) VotingEnded(now time.Time) bool {
	return !now.Before(b.VotingEndsAt)
}

// ApprovedByVotes reports the outcome of the tally: a simple weighted
// majority with no quorum. Ties reject.
func (b *Budget) ApprovedByVotes() bool {
	return b.VotesFor > b.VotesAgainst
}

// CanRevise reports whether a rejected budget may still be resubmitted.
func (b *Budget) CanRevise() bool {
	return b.Status == BudgetRejected && b.Revision < MaxBudgetRevisions
}

// Active reports whether this budget blocks submission of another one.
// Rejected and executed budgets are terminal.
func (b *Budget) Active() bool {
	return b.Status == BudgetPending || b.Status == BudgetApproved
}

// RecordVote accumulates one vote of the given power into the tally. The
// caller guarantees (budget, voter) uniqueness under the same atomic
// commit that stores the Vote record.
func (b *Budget) RecordVote(power int64, approve bool, now time.Time) error {
	if b.Status != BudgetPending {
		return ErrBudgetNotPending
	}
	if b.VotingEnded(now) {
		return ErrVotingWindowClosed
	}
	if power <= 0 {
		return ErrInvalidAmount
	}
	if approve {
		votes, err := addAmount(b.VotesFor, power)
		if err != nil {
			return err
		}
		b.VotesFor = votes
	} else {
		votes, err := addAmount(b.VotesAgainst, power)
		if err != nil {
			return err
		}
		b.VotesAgainst = votes
	}
	return nil
}

// FinalizeVoting resolves a pending budget once the voting window has
// closed.
func (b *Budget) FinalizeVoting(now time.Time) error {
	if b.Status != BudgetPending {
		return ErrBudgetNotPending
	}
	if !b.VotingEnded(now) {
		return ErrVotingPeriodNotEnded
	}
	if b.ApprovedByVotes() {
		b.Status = BudgetApproved
	} else {
		b.Status = BudgetRejected
	}
	return nil
}

// ReleaseMilestone marks milestone index as released and returns the
// tranche amount (budget amount * release percent / 100). Milestones may
// release out of order but each exactly once. When the last milestone
// releases, the budget becomes Executed.
func (b *Budget) ReleaseMilestone(index int, now time.Time) (int64, error) {
	if index < 0 || index >= len(b.Milestones) {
		return 0, ErrInvalidParameters
	}
	m := &b.Milestones[index]
	if m.Released {
		return 0, ErrMilestoneAlreadyReleased
	}
	if b.Status != BudgetApproved {
		return 0, ErrBudgetNotApproved
	}
	if !m.Unlocked(now) {
		return 0, ErrMilestoneNotUnlocked
	}
	amount, err := mulDiv(b.Amount, int64(m.ReleasePercent), 100)
	if err != nil {
		return 0, err
	}
	m.Released = true
	m.ReleasedAmount = amount

	allReleased := true
	for i := range b.Milestones {
		if !b.Milestones[i].Released {
			allReleased = false
			break
		}
	}
	if allReleased {
		b.Status = BudgetExecuted
	}
	return amount, nil
}

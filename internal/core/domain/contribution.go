package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contribution is one party's pledge to one campaign. There is at most one
// per (campaign, contributor) pair; a second attempt by the same
// contributor is rejected, never merged silently. The record is immutable
// except for the write-once refund and profit fields.
type Contribution struct {
	CampaignID    uuid.UUID
	Contributor   string
	Amount        int64
	ContributedAt time.Time

	Refunded      bool
	ProfitShare   int64
	ProfitClaimed bool
}

// VotingPower is the weight this contribution carries in budget votes:
// linear in the contributed amount.
func (ct *Contribution) VotingPower() int64 { return ct.Amount }

// CanRefund reports whether the refund for this contribution is still
// outstanding.
func (ct *Contribution) CanRefund() bool { return !ct.Refunded }

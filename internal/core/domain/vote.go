package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one contributor's ballot on one budget. A voter's power is
// their contribution amount at cast time. Votes are immutable once cast;
// uniqueness per (budget, voter) is enforced by the store.
type Vote struct {
	BudgetID uuid.UUID
	Voter    string
	Power    int64
	Approve  bool
	VotedAt  time.Time
}

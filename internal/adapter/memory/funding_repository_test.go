package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"stagefund/internal/core/domain"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedCampaign(t *testing.T, r *FundingRepository) *domain.Campaign {
	t.Helper()
	c, err := domain.NewCampaign(uuid.New(), "op", 1000, t0.Add(24*time.Hour), t0)
	require.NoError(t, err)
	require.NoError(t, r.CreateCampaign(context.Background(), c))
	return c
}

// TestFailedOperationLeavesStateUntouched verifies the clone-and-swap
// discipline: a rejected mutation must not leak partial changes.
func TestFailedOperationLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	r := NewFundingRepository()
	c := seedCampaign(t, r)

	_, err := r.Contribute(ctx, c.ID, "alice", 400, t0)
	require.NoError(t, err)

	// Rejected contribution after the deadline.
	_, err = r.Contribute(ctx, c.ID, "bob", 100, t0.Add(48*time.Hour))
	require.ErrorIs(t, err, domain.ErrCampaignClosed)

	got, err := r.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(400), got.Raised)
	require.Equal(t, int32(1), got.Contributors)

	_, err = r.GetContribution(ctx, c.ID, "bob")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// TestReturnedValuesAreCopies ensures callers cannot mutate stored state
// through returned pointers.
func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	r := NewFundingRepository()
	c := seedCampaign(t, r)

	got, err := r.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	got.Raised = 999999

	again, err := r.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	require.Zero(t, again.Raised)
}

// TestReleaseMilestoneExactlyOnce: a release moves the tranche out of
// escrow into the expense total exactly once.
func TestReleaseMilestoneExactlyOnce(t *testing.T) {
	ctx := context.Background()
	r := NewFundingRepository()
	c := seedCampaign(t, r)

	_, err := r.Contribute(ctx, c.ID, "alice", 1000, t0)
	require.NoError(t, err)
	after := t0.Add(25 * time.Hour)
	_, err = r.FinalizeCampaign(ctx, c.ID, after)
	require.NoError(t, err)

	b, err := r.SubmitBudget(ctx, c.ID, domain.BudgetProposal{
		ID:     uuid.New(),
		Amount: 1000,
		Milestones: []domain.MilestoneProposal{
			{ReleasePercent: 100, UnlockAt: after},
		},
		VotingPeriod: time.Hour,
	}, after)
	require.NoError(t, err)

	_, err = r.CastVote(ctx, b.ID, "alice", true, after)
	require.NoError(t, err)
	_, err = r.FinalizeVote(ctx, b.ID, after.Add(time.Hour))
	require.NoError(t, err)

	_, amount, err := r.ReleaseMilestone(ctx, b.ID, 0, after.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1000), amount)

	_, _, err = r.ReleaseMilestone(ctx, b.ID, 0, after.Add(2*time.Hour))
	require.ErrorIs(t, err, domain.ErrMilestoneAlreadyReleased)

	got, err := r.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), got.Expenses)
	require.Zero(t, got.Escrow)
}

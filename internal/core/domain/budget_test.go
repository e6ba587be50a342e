package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func fundedCampaign(t *testing.T) *Campaign {
	t.Helper()
	c := testCampaign(t, 1000)
	require.NoError(t, c.AcceptContribution(1000, t0))
	require.NoError(t, c.Finalize(c.Deadline.Add(time.Minute)))
	return c
}

func proposal(amount int64, percents ...int) BudgetProposal {
	p := BudgetProposal{
		ID:           uuid.New(),
		Amount:       amount,
		Description:  "production budget",
		VotingPeriod: time.Hour,
	}
	for i, pct := range percents {
		p.Milestones = append(p.Milestones, MilestoneProposal{
			Description:    "phase",
			ReleasePercent: pct,
			UnlockAt:       t0.Add(time.Duration(i+1) * 48 * time.Hour),
		})
	}
	return p
}

func TestNewBudgetValidation(t *testing.T) {
	c := fundedCampaign(t)
	now := c.Deadline.Add(time.Hour)

	pending := testCampaign(t, 1000)
	_, err := NewBudget(pending, proposal(900, 100), 0, now)
	require.ErrorIs(t, err, ErrCampaignNotFunded)

	_, err = NewBudget(c, proposal(0, 100), 0, now)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewBudget(c, proposal(1001, 100), 0, now)
	require.ErrorIs(t, err, ErrExceedsRaisedFunds)

	_, err = NewBudget(c, proposal(900), 0, now)
	require.ErrorIs(t, err, ErrInvalidMilestoneSchedule)

	_, err = NewBudget(c, proposal(900, 50, 30, 19), 0, now)
	require.ErrorIs(t, err, ErrInvalidMilestoneSchedule)

	_, err = NewBudget(c, proposal(900, 50, 50, 0), 0, now)
	require.ErrorIs(t, err, ErrInvalidMilestoneSchedule)

	long := proposal(900, 100)
	long.Description = strings.Repeat("x", MaxBudgetDescriptionLen+1)
	_, err = NewBudget(c, long, 0, now)
	require.ErrorIs(t, err, ErrDescriptionTooLong)

	zeroWindow := proposal(900, 100)
	zeroWindow.VotingPeriod = 0
	_, err = NewBudget(c, zeroWindow, 0, now)
	require.ErrorIs(t, err, ErrInvalidParameters)

	b, err := NewBudget(c, proposal(900, 50, 30, 20), 0, now)
	require.NoError(t, err)
	require.Equal(t, BudgetPending, b.Status)
	require.Equal(t, now.Add(time.Hour), b.VotingEndsAt)
	require.Len(t, b.Milestones, 3)
}

func TestRecordVoteAndFinalize(t *testing.T) {
	c := fundedCampaign(t)
	now := c.Deadline.Add(time.Hour)
	b, err := NewBudget(c, proposal(900, 100), 0, now)
	require.NoError(t, err)

	require.NoError(t, b.RecordVote(500, true, now))
	require.NoError(t, b.RecordVote(300, true, now))
	require.NoError(t, b.RecordVote(200, false, now))
	require.Equal(t, int64(800), b.VotesFor)
	require.Equal(t, int64(200), b.VotesAgainst)

	// The window has to close before the tally resolves.
	require.ErrorIs(t, b.FinalizeVoting(now), ErrVotingPeriodNotEnded)

	closed := b.VotingEndsAt
	require.ErrorIs(t, b.RecordVote(100, true, closed), ErrVotingWindowClosed)

	require.NoError(t, b.FinalizeVoting(closed))
	require.Equal(t, BudgetApproved, b.Status)
	require.ErrorIs(t, b.FinalizeVoting(closed), ErrBudgetNotPending)
}

func TestTieRejects(t *testing.T) {
	c := fundedCampaign(t)
	now := c.Deadline.Add(time.Hour)
	b, err := NewBudget(c, proposal(900, 100), 0, now)
	require.NoError(t, err)

	require.NoError(t, b.RecordVote(500, true, now))
	require.NoError(t, b.RecordVote(500, false, now))
	require.NoError(t, b.FinalizeVoting(b.VotingEndsAt))
	require.Equal(t, BudgetRejected, b.Status)
	require.True(t, b.CanRevise())
}

func TestReviseCap(t *testing.T) {
	c := fundedCampaign(t)
	now := c.Deadline.Add(time.Hour)
	b, err := NewBudget(c, proposal(900, 100), MaxBudgetRevisions, now)
	require.NoError(t, err)
	b.Status = BudgetRejected
	require.False(t, b.CanRevise())
}

func TestReleaseMilestone(t *testing.T) {
	c := fundedCampaign(t)
	now := c.Deadline.Add(time.Hour)
	b, err := NewBudget(c, proposal(900, 50, 30, 20), 0, now)
	require.NoError(t, err)
	require.NoError(t, b.RecordVote(800, true, now))
	require.NoError(t, b.FinalizeVoting(b.VotingEndsAt))

	unlock0 := b.Milestones[0].UnlockAt

	_, err = b.ReleaseMilestone(0, unlock0.Add(-time.Second))
	require.ErrorIs(t, err, ErrMilestoneNotUnlocked)

	amount, err := b.ReleaseMilestone(0, unlock0)
	require.NoError(t, err)
	require.Equal(t, int64(450), amount)
	require.True(t, b.Milestones[0].Released)

	_, err = b.ReleaseMilestone(0, unlock0)
	require.ErrorIs(t, err, ErrMilestoneAlreadyReleased)

	_, err = b.ReleaseMilestone(3, unlock0)
	require.ErrorIs(t, err, ErrInvalidParameters)

	// Out of order is fine; the last release flips the budget to Executed.
	late := b.Milestones[2].UnlockAt
	amount, err = b.ReleaseMilestone(2, late)
	require.NoError(t, err)
	require.Equal(t, int64(180), amount)
	require.Equal(t, BudgetApproved, b.Status)

	amount, err = b.ReleaseMilestone(1, late)
	require.NoError(t, err)
	require.Equal(t, int64(270), amount)
	require.Equal(t, BudgetExecuted, b.Status)

	// Replays after execution still report the milestone, not the status.
	_, err = b.ReleaseMilestone(1, late)
	require.ErrorIs(t, err, ErrMilestoneAlreadyReleased)
}

func TestReleaseRequiresApproval(t *testing.T) {
	c := fundedCampaign(t)
	now := c.Deadline.Add(time.Hour)
	b, err := NewBudget(c, proposal(900, 100), 0, now)
	require.NoError(t, err)

	_, err = b.ReleaseMilestone(0, b.Milestones[0].UnlockAt)
	require.ErrorIs(t, err, ErrBudgetNotApproved)
}

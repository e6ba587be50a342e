package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testCampaign(t *testing.T, goal int64) *Campaign {
	t.Helper()
	c, err := NewCampaign(uuid.New(), "operator-1", goal, t0.Add(24*time.Hour), t0)
	require.NoError(t, err)
	return c
}

func TestNewCampaignValidation(t *testing.T) {
	_, err := NewCampaign(uuid.New(), "", 1000, t0.Add(time.Hour), t0)
	require.ErrorIs(t, err, ErrInvalidParameters)

	_, err = NewCampaign(uuid.New(), "op", 0, t0.Add(time.Hour), t0)
	require.ErrorIs(t, err, ErrInvalidParameters)

	_, err = NewCampaign(uuid.New(), "op", 1000, t0, t0)
	require.ErrorIs(t, err, ErrInvalidParameters)

	c, err := NewCampaign(uuid.New(), "op", 1000, t0.Add(time.Hour), t0)
	require.NoError(t, err)
	require.Equal(t, CampaignPending, c.Status)
	require.Zero(t, c.Raised)
}

func TestAcceptContribution(t *testing.T) {
	c := testCampaign(t, 1000)

	require.ErrorIs(t, c.AcceptContribution(0, t0), ErrInvalidAmount)
	require.ErrorIs(t, c.AcceptContribution(-5, t0), ErrInvalidAmount)

	require.NoError(t, c.AcceptContribution(500, t0))
	require.NoError(t, c.AcceptContribution(300, t0.Add(time.Hour)))
	require.Equal(t, int64(800), c.Raised)
	require.Equal(t, int64(800), c.Escrow)
	require.Equal(t, int32(2), c.Contributors)

	// Past the deadline the campaign no longer accepts money.
	err := c.AcceptContribution(100, c.Deadline.Add(time.Second))
	require.ErrorIs(t, err, ErrCampaignClosed)
	require.Equal(t, int64(800), c.Raised)
}

func TestFinalize(t *testing.T) {
	c := testCampaign(t, 1000)
	require.NoError(t, c.AcceptContribution(1000, t0))

	// Reaching the goal early does not allow early finalization.
	require.ErrorIs(t, c.Finalize(t0.Add(time.Hour)), ErrDeadlineNotReached)
	require.Equal(t, CampaignPending, c.Status)

	after := c.Deadline.Add(time.Minute)
	require.NoError(t, c.Finalize(after))
	require.Equal(t, CampaignFunded, c.Status)

	require.ErrorIs(t, c.Finalize(after), ErrAlreadyFinalized)
}

func TestFinalizeBelowGoal(t *testing.T) {
	c := testCampaign(t, 1000)
	require.NoError(t, c.AcceptContribution(999, t0))

	require.NoError(t, c.Finalize(c.Deadline.Add(time.Minute)))
	require.Equal(t, CampaignFailed, c.Status)
	require.True(t, c.RefundsAvailable())
}

func TestComputeDistribution(t *testing.T) {
	c := testCampaign(t, 1000)
	require.NoError(t, c.AcceptContribution(1000, t0))
	require.NoError(t, c.Finalize(c.Deadline.Add(time.Minute)))
	c.Expenses = 450

	now := c.Deadline.Add(time.Hour)
	require.NoError(t, c.ComputeDistribution(1000, now))

	// profit 550 split 60/35/5; the remainder lands in the contributor pool.
	require.Equal(t, int64(331), c.ContributorPool)
	require.Equal(t, int64(192), c.OperatorPool)
	require.Equal(t, int64(27), c.PlatformPool)
	require.Equal(t, int64(550), c.ContributorPool+c.OperatorPool+c.PlatformPool)
	require.Equal(t, CampaignCompleted, c.Status)
	require.True(t, c.DistributionComputed)

	require.ErrorIs(t, c.ComputeDistribution(1000, now), ErrDistributionAlreadyComputed)
}

func TestComputeDistributionLoss(t *testing.T) {
	c := testCampaign(t, 1000)
	require.NoError(t, c.AcceptContribution(1000, t0))
	require.NoError(t, c.Finalize(c.Deadline.Add(time.Minute)))
	c.Expenses = 450

	require.NoError(t, c.ComputeDistribution(400, c.Deadline.Add(time.Hour)))
	require.Zero(t, c.ContributorPool)
	require.Zero(t, c.OperatorPool)
	require.Zero(t, c.PlatformPool)
	require.Equal(t, int64(400), c.Revenue)
	require.Equal(t, CampaignCompleted, c.Status)
}

func TestComputeDistributionRequiresFunded(t *testing.T) {
	c := testCampaign(t, 1000)
	require.ErrorIs(t, c.ComputeDistribution(1000, t0), ErrCampaignNotFunded)

	require.ErrorIs(t, c.ComputeDistribution(-1, t0), ErrInvalidAmount)
}

func TestContributorShare(t *testing.T) {
	c := testCampaign(t, 1000)
	require.NoError(t, c.AcceptContribution(500, t0))
	require.NoError(t, c.AcceptContribution(300, t0))
	require.NoError(t, c.AcceptContribution(200, t0))
	require.NoError(t, c.Finalize(c.Deadline.Add(time.Minute)))
	c.Expenses = 450
	require.NoError(t, c.ComputeDistribution(1000, c.Deadline.Add(time.Hour)))

	share500, err := c.ContributorShare(500)
	require.NoError(t, err)
	share300, err := c.ContributorShare(300)
	require.NoError(t, err)
	share200, err := c.ContributorShare(200)
	require.NoError(t, err)

	require.Equal(t, int64(165), share500) // 331*500/1000
	require.Equal(t, int64(99), share300)  // 331*300/1000
	require.Equal(t, int64(66), share200)  // 331*200/1000
	require.LessOrEqual(t, share500+share300+share200, c.ContributorPool)
}

func TestDebitEscrow(t *testing.T) {
	c := testCampaign(t, 1000)
	require.NoError(t, c.AcceptContribution(500, t0))

	require.ErrorIs(t, c.DebitEscrow(501), ErrInsufficientEscrowBalance)
	require.Equal(t, int64(500), c.Escrow)

	require.NoError(t, c.DebitEscrow(500))
	require.Zero(t, c.Escrow)
}

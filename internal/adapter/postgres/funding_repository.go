// Package postgres implements the funding repository on PostgreSQL via
// pgx. Every mutating operation runs as a single serializable transaction
// that locks the rows it mutates with SELECT ... FOR UPDATE, re-checks the
// lifecycle invariants through the domain state machine and commits all
// changes together.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"stagefund/internal/core/domain"
)

// FundingRepository implements port.FundingRepository using pgxpool.
type FundingRepository struct {
	pool *pgxpool.Pool
}

// NewFundingRepository returns a new repository instance.
func NewFundingRepository(pool *pgxpool.Pool) *FundingRepository {
	return &FundingRepository{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// querier covers both pool and transaction handles.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *FundingRepository) begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
}

const campaignColumns = `id, operator, funding_goal, deadline, raised, contributors, status,
		expenses, revenue, contributor_pool, operator_pool, platform_pool,
		distribution_computed, operator_claimed, escrow, created_at, updated_at`

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID, &c.Operator, &c.FundingGoal, &c.Deadline, &c.Raised, &c.Contributors, &c.Status,
		&c.Expenses, &c.Revenue, &c.ContributorPool, &c.OperatorPool, &c.PlatformPool,
		&c.DistributionComputed, &c.OperatorClaimed, &c.Escrow, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func getCampaign(ctx context.Context, q querier, id uuid.UUID, lock string) (*domain.Campaign, error) {
	return scanCampaign(q.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`+lock, id))
}

func updateCampaign(ctx context.Context, tx pgx.Tx, c *domain.Campaign) error {
	_, err := tx.Exec(ctx, `UPDATE campaigns SET
			raised = $2, contributors = $3, status = $4, expenses = $5, revenue = $6,
			contributor_pool = $7, operator_pool = $8, platform_pool = $9,
			distribution_computed = $10, operator_claimed = $11, escrow = $12, updated_at = $13
		WHERE id = $1`,
		c.ID, c.Raised, c.Contributors, c.Status, c.Expenses, c.Revenue,
		c.ContributorPool, c.OperatorPool, c.PlatformPool,
		c.DistributionComputed, c.OperatorClaimed, c.Escrow, c.UpdatedAt)
	return err
}

const contributionColumns = `campaign_id, contributor, amount, contributed_at, refunded, profit_share, profit_claimed`

func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var ct domain.Contribution
	err := row.Scan(&ct.CampaignID, &ct.Contributor, &ct.Amount, &ct.ContributedAt,
		&ct.Refunded, &ct.ProfitShare, &ct.ProfitClaimed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func getContribution(ctx context.Context, q querier, campaignID uuid.UUID, contributor, lock string) (*domain.Contribution, error) {
	return scanContribution(q.QueryRow(ctx,
		`SELECT `+contributionColumns+` FROM contributions
		WHERE campaign_id = $1 AND contributor = $2`+lock, campaignID, contributor))
}

func getBudget(ctx context.Context, q querier, where string, arg any, lock string) (*domain.Budget, error) {
	var b domain.Budget
	err := q.QueryRow(ctx,
		`SELECT id, campaign_id, amount, description, status, voting_ends_at,
			votes_for, votes_against, revision, created_at
		FROM budgets WHERE `+where+lock, arg).Scan(
		&b.ID, &b.CampaignID, &b.Amount, &b.Description, &b.Status, &b.VotingEndsAt,
		&b.VotesFor, &b.VotesAgainst, &b.Revision, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx,
		`SELECT description, release_percent, unlock_at, released, released_amount
		FROM milestones WHERE budget_id = $1 ORDER BY idx`, b.ID)
	if err != nil {
		return nil, err
	}
	b.Milestones, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Milestone, error) {
		var m domain.Milestone
		err := row.Scan(&m.Description, &m.ReleasePercent, &m.UnlockAt, &m.Released, &m.ReleasedAmount)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateCampaign stores a freshly opened campaign.
func (r *FundingRepository) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO campaigns
		(id, operator, funding_goal, deadline, raised, contributors, status,
		 expenses, revenue, contributor_pool, operator_pool, platform_pool,
		 distribution_computed, operator_claimed, escrow, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		c.ID, c.Operator, c.FundingGoal, c.Deadline, c.Raised, c.Contributors, c.Status,
		c.Expenses, c.Revenue, c.ContributorPool, c.OperatorPool, c.PlatformPool,
		c.DistributionComputed, c.OperatorClaimed, c.Escrow, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetCampaign returns a campaign by id.
func (r *FundingRepository) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	return getCampaign(ctx, r.pool, id, "")
}

// GetContribution returns one contributor's record for a campaign.
func (r *FundingRepository) GetContribution(ctx context.Context, campaignID uuid.UUID, contributor string) (*domain.Contribution, error) {
	return getContribution(ctx, r.pool, campaignID, contributor, "")
}

// ListContributions returns all contributions of a campaign.
func (r *FundingRepository) ListContributions(ctx context.Context, campaignID uuid.UUID) ([]domain.Contribution, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+contributionColumns+` FROM contributions
		WHERE campaign_id = $1 ORDER BY contributed_at`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Contribution, error) {
		var ct domain.Contribution
		err := row.Scan(&ct.CampaignID, &ct.Contributor, &ct.Amount, &ct.ContributedAt,
			&ct.Refunded, &ct.ProfitShare, &ct.ProfitClaimed)
		return ct, err
	})
}

// Contribute creates the contribution record and moves amount into the
// campaign escrow under one serializable commit.
func (r *FundingRepository) Contribute(ctx context.Context, campaignID uuid.UUID, contributor string, amount int64, now time.Time) (_ *domain.Contribution, err error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	c, err := getCampaign(ctx, tx, campaignID, " FOR UPDATE")
	if err != nil {
		return nil, err
	}
	if err = c.AcceptContribution(amount, now); err != nil {
		return nil, err
	}
	if err = updateCampaign(ctx, tx, c); err != nil {
		return nil, err
	}

	ct := &domain.Contribution{
		CampaignID:    campaignID,
		Contributor:   contributor,
		Amount:        amount,
		ContributedAt: now,
	}
	_, err = tx.Exec(ctx, `INSERT INTO contributions
		(campaign_id, contributor, amount, contributed_at, refunded, profit_share, profit_claimed)
		VALUES ($1,$2,$3,$4,false,0,false)`,
		ct.CampaignID, ct.Contributor, ct.Amount, ct.ContributedAt)
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicateContribution
	}
	if err != nil {
		return nil, err
	}
	return ct, nil
}

// FinalizeCampaign resolves a pending campaign after its deadline.
func (r *FundingRepository) FinalizeCampaign(ctx context.Context, campaignID uuid.UUID, now time.Time) (_ *domain.Campaign, err error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	c, err := getCampaign(ctx, tx, campaignID, " FOR UPDATE")
	if err != nil {
		return nil, err
	}
	if err = c.Finalize(now); err != nil {
		return nil, err
	}
	if err = updateCampaign(ctx, tx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ClaimRefund pays back a contributor's full original amount from escrow,
// once.
func (r *FundingRepository) ClaimRefund(ctx context.Context, campaignID uuid.UUID, contributor string) (_ int64, err error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	c, err := getCampaign(ctx, tx, campaignID, " FOR UPDATE")
	if err != nil {
		return 0, err
	}
	ct, err := getContribution(ctx, tx, campaignID, contributor, " FOR UPDATE")
	if err != nil {
		return 0, err
	}
	if !c.RefundsAvailable() {
		return 0, domain.ErrCampaignNotFailed
	}
	if !ct.CanRefund() {
		return 0, domain.ErrAlreadyRefunded
	}
	if err = c.DebitEscrow(ct.Amount); err != nil {
		return 0, err
	}

	if _, err = tx.Exec(ctx, `UPDATE contributions SET refunded = true
		WHERE campaign_id = $1 AND contributor = $2`, campaignID, contributor); err != nil {
		return 0, err
	}
	if err = updateCampaign(ctx, tx, c); err != nil {
		return 0, err
	}
	return ct.Amount, nil
}

// SubmitBudget derives the revision from the latest stored budget,
// validates the proposal against the campaign and stores a new pending
// budget, all inside one transaction.
func (r *FundingRepository) SubmitBudget(ctx context.Context, campaignID uuid.UUID, p domain.BudgetProposal, now time.Time) (_ *domain.Budget, err error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	c, err := getCampaign(ctx, tx, campaignID, " FOR UPDATE")
	if err != nil {
		return nil, err
	}

	revision := 0
	latest, err := getBudget(ctx, tx, "campaign_id = $1 ORDER BY revision DESC LIMIT 1", campaignID, " FOR UPDATE OF budgets")
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// first budget for this campaign
	case err != nil:
		return nil, err
	case latest.Active() || latest.Status == domain.BudgetExecuted:
		return nil, domain.ErrActiveBudgetExists
	case !latest.CanRevise():
		return nil, domain.ErrMaxRevisionsReached
	default:
		revision = latest.Revision + 1
	}

	b, err := domain.NewBudget(c, p, revision, now)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `INSERT INTO budgets
		(id, campaign_id, amount, description, status, voting_ends_at,
		 votes_for, votes_against, revision, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		b.ID, b.CampaignID, b.Amount, b.Description, b.Status, b.VotingEndsAt,
		b.VotesFor, b.VotesAgainst, b.Revision, b.CreatedAt)
	if err != nil {
		return nil, err
	}
	for i, m := range b.Milestones {
		_, err = tx.Exec(ctx, `INSERT INTO milestones
			(budget_id, idx, description, release_percent, unlock_at, released, released_amount)
			VALUES ($1,$2,$3,$4,$5,false,0)`,
			b.ID, i, m.Description, m.ReleasePercent, m.UnlockAt)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// GetBudget returns a budget with its milestones.
func (r *FundingRepository) GetBudget(ctx context.Context, id uuid.UUID) (*domain.Budget, error) {
	return getBudget(ctx, r.pool, "id = $1", id, "")
}

// GetLatestBudget returns the highest-revision budget of a campaign.
func (r *FundingRepository) GetLatestBudget(ctx context.Context, campaignID uuid.UUID) (*domain.Budget, error) {
	return getBudget(ctx, r.pool, "campaign_id = $1 ORDER BY revision DESC LIMIT 1", campaignID, "")
}

// CastVote records one contributor ballot and accumulates its power into
// the budget tally. The votes primary key enforces one vote per
// (budget, voter).
func (r *FundingRepository) CastVote(ctx context.Context, budgetID uuid.UUID, voter string, approve bool, now time.Time) (_ *domain.Vote, err error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	b, err := getBudget(ctx, tx, "id = $1", budgetID, " FOR UPDATE OF budgets")
	if err != nil {
		return nil, err
	}
	ct, err := getContribution(ctx, tx, b.CampaignID, voter, "")
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotAContributor
	}
	if err != nil {
		return nil, err
	}
	if err = b.RecordVote(ct.VotingPower(), approve, now); err != nil {
		return nil, err
	}

	v := &domain.Vote{
		BudgetID: budgetID,
		Voter:    voter,
		Power:    ct.VotingPower(),
		Approve:  approve,
		VotedAt:  now,
	}
	_, err = tx.Exec(ctx, `INSERT INTO votes (budget_id, voter, power, approve, voted_at)
		VALUES ($1,$2,$3,$4,$5)`, v.BudgetID, v.Voter, v.Power, v.Approve, v.VotedAt)
	if isUniqueViolation(err) {
		return nil, domain.ErrAlreadyVoted
	}
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `UPDATE budgets SET votes_for = $2, votes_against = $3 WHERE id = $1`,
		b.ID, b.VotesFor, b.VotesAgainst)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// FinalizeVote resolves a pending budget after its voting window.
func (r *FundingRepository) FinalizeVote(ctx context.Context, budgetID uuid.UUID, now time.Time) (_ *domain.Budget, err error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	b, err := getBudget(ctx, tx, "id = $1", budgetID, " FOR UPDATE OF budgets")
	if err != nil {
		return nil, err
	}
	if err = b.FinalizeVoting(now); err != nil {
		return nil, err
	}
	if _, err = tx.Exec(ctx, `UPDATE budgets SET status = $2 WHERE id = $1`, b.ID, b.Status); err != nil {
		return nil, err
	}
	return b, nil
}

// ReleaseMilestone moves one unlocked tranche from campaign escrow to the
// operator and adds it to the expense total.
func (r *FundingRepository) ReleaseMilestone(ctx context.Context, budgetID uuid.UUID, index int, now time.Time) (_ *domain.Budget, _ int64, err error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	b, err := getBudget(ctx, tx, "id = $1", budgetID, " FOR UPDATE OF budgets")
	if err != nil {
		return nil, 0, err
	}
	c, err := getCampaign(ctx, tx, b.CampaignID, " FOR UPDATE")
	if err != nil {
		return nil, 0, err
	}

	amount, err := b.ReleaseMilestone(index, now)
	if err != nil {
		return nil, 0, err
	}
	if err = c.DebitEscrow(amount); err != nil {
		return nil, 0, err
	}
	if err = c.AddExpense(amount); err != nil {
		return nil, 0, err
	}

	_, err = tx.Exec(ctx, `UPDATE milestones SET released = true, released_amount = $3
		WHERE budget_id = $1 AND idx = $2`, b.ID, index, amount)
	if err != nil {
		return nil, 0, err
	}
	if _, err = tx.Exec(ctx, `UPDATE budgets SET status = $2 WHERE id = $1`, b.ID, b.Status); err != nil {
		return nil, 0, err
	}
	if err = updateCampaign(ctx, tx, c); err != nil {
		return nil, 0, err
	}
	return b, amount, nil
}

// CalculateDistribution records the reported revenue and computes the
// three profit pools, once per campaign.
func (r *FundingRepository) CalculateDistribution(ctx context.Context, campaignID uuid.UUID, revenue int64, now time.Time) (_ *domain.Campaign, err error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	c, err := getCampaign(ctx, tx, campaignID, " FOR UPDATE")
	if err != nil {
		return nil, err
	}
	if err = c.ComputeDistribution(revenue, now); err != nil {
		return nil, err
	}
	if err = updateCampaign(ctx, tx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ClaimContributorShare pays a contributor's proportional share from
// escrow exactly once. The claimed flag and write-once share are set in
// the same commit that debits the escrow, before which nothing is
// observable outside the transaction.
func (r *FundingRepository) ClaimContributorShare(ctx context.Context, campaignID uuid.UUID, contributor string) (_ int64, err error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	c, err := getCampaign(ctx, tx, campaignID, " FOR UPDATE")
	if err != nil {
		return 0, err
	}
	ct, err := getContribution(ctx, tx, campaignID, contributor, " FOR UPDATE")
	if err != nil {
		return 0, err
	}
	if !c.DistributionComputed {
		return 0, domain.ErrDistributionNotComputed
	}
	if ct.ProfitClaimed {
		return 0, domain.ErrAlreadyClaimed
	}

	share, err := c.ContributorShare(ct.Amount)
	if err != nil {
		return 0, err
	}
	if err = c.DebitEscrow(share); err != nil {
		return 0, err
	}

	// Flag first, then balance: within the transaction the order is
	// equivalent, and the row lock prevents a concurrent claim from
	// observing profit_claimed = false.
	_, err = tx.Exec(ctx, `UPDATE contributions SET profit_claimed = true, profit_share = $3
		WHERE campaign_id = $1 AND contributor = $2`, campaignID, contributor)
	if err != nil {
		return 0, err
	}
	if err = updateCampaign(ctx, tx, c); err != nil {
		return 0, err
	}
	return share, nil
}

// ClaimOperatorShare pays the operator pool exactly once.
func (r *FundingRepository) ClaimOperatorShare(ctx context.Context, campaignID uuid.UUID) (_ int64, err error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	c, err := getCampaign(ctx, tx, campaignID, " FOR UPDATE")
	if err != nil {
		return 0, err
	}
	if !c.DistributionComputed {
		return 0, domain.ErrDistributionNotComputed
	}
	if c.OperatorClaimed {
		return 0, domain.ErrAlreadyClaimed
	}

	c.OperatorClaimed = true
	if err = c.DebitEscrow(c.OperatorPool); err != nil {
		return 0, err
	}
	if err = updateCampaign(ctx, tx, c); err != nil {
		return 0, err
	}
	return c.OperatorPool, nil
}

package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo data: a handful of open campaigns with contributions
// already escrowed, so dashboards and the API have something to show.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 1; i <= 3; i++ {
		campaignID := uuid.New()
		operator := fmt.Sprintf("operator-%d", i)
		goal := int64(1_000_000) // 10,000.00 units
		deadline := time.Now().AddDate(0, 1, 0)

		contributors := 5 + r.Intn(10)
		var raised int64
		type pledge struct {
			contributor string
			amount      int64
		}
		pledges := make([]pledge, 0, contributors)
		for j := 1; j <= contributors; j++ {
			amount := int64(10_000 * (1 + r.Intn(20)))
			raised += amount
			pledges = append(pledges, pledge{fmt.Sprintf("backer-%d-%d", i, j), amount})
		}

		_, err := db.Exec(ctx, `INSERT INTO campaigns
    (id, operator, funding_goal, deadline, raised, contributors, status,
     expenses, revenue, contributor_pool, operator_pool, platform_pool,
     distribution_computed, operator_claimed, escrow, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,'pending',0,0,0,0,0,false,false,$5,now(),now())
ON CONFLICT DO NOTHING`,
			campaignID, operator, goal, deadline, raised, len(pledges))
		if err != nil {
			return err
		}

		for _, p := range pledges {
			_, err = db.Exec(ctx, `INSERT INTO contributions
    (campaign_id, contributor, amount, contributed_at, refunded, profit_share, profit_claimed)
VALUES ($1,$2,$3,now(),false,0,false) ON CONFLICT DO NOTHING`,
				campaignID, p.contributor, p.amount)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

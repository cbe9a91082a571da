package store

import (
	"context"
	"fmt"
	"time"

	"aidhub/internal/utils"
	"aidhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Population standard deviation, matching what the urgency estimator was calibrated on.
var urgencyAggregates = []string{
	"COALESCE(AVG(urgency), 0) AS avg",
	"COALESCE(STDDEV_POP(urgency), 0) AS std",
	"COUNT(id) AS count",
}

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) CurrentUrgency(ctx context.Context, donationType string) (types.UrgencyStats, error) {
	return r.urgency(ctx, psql().Select(urgencyAggregates...).From(recipientTableName).
		Where(sq.Eq{"donation_type": donationType}))
}

func (r *StatsRepository) HistoricalUrgency(ctx context.Context, donationType string, since time.Time) (types.UrgencyStats, error) {
	return r.urgency(ctx, psql().Select(urgencyAggregates...).From(donatedRecipientTableName).
		Where(sq.Eq{"donation_type": donationType}).
		Where(sq.GtOrEq{"transaction_date": since}))
}

func (r *StatsRepository) urgency(ctx context.Context, builder sq.SelectBuilder) (types.UrgencyStats, error) {

	var stats types.UrgencyStats

	query, args, err := builder.ToSql()
	if err != nil {
		return stats, fmt.Errorf("failed to generate urgency stats query: %w", err)
	}

	err = pgxscan.Get(ctx, r.pool, &stats, query, args...)
	return stats, utils.ErrorWrapOrNil(err, "failed to aggregate urgency")
}

// TypeStats aggregates completed matches per donation type, most common first.
func (r *StatsRepository) TypeStats(ctx context.Context) ([]*types.TypeStat, error) {

	query, args, err := psql().
		Select("donation_type", "COUNT(id) AS count", "AVG(urgency) AS avg_urgency").
		From(donatedRecipientTableName).
		GroupBy("donation_type").
		OrderBy("count DESC", "donation_type ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate type stats query: %w", err)
	}

	var out = make([]*types.TypeStat, 0)
	err = pgxscan.Select(ctx, r.pool, &out, query, args...)
	if err != nil {
		return nil, utils.ErrorWrapOrNil(err, "failed to fetch type stats")
	}

	return out, nil
}

func (r *StatsRepository) Summary(ctx context.Context) (*types.SummaryStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM aidhub.donations) + (SELECT COUNT(*) FROM aidhub.donated_recipients) AS total_donations,
			(SELECT COUNT(DISTINCT donor_name) FROM (
				SELECT donor_name FROM aidhub.donations
				UNION SELECT donor_name FROM aidhub.donated_recipients) d) AS unique_donors,
			(SELECT COUNT(DISTINCT location) FROM (
				SELECT location FROM aidhub.recipients
				UNION SELECT location FROM aidhub.donated_recipients) l) AS communities_served`

	var stats types.SummaryStats
	row := r.pool.QueryRow(ctx, query)
	if err := row.Scan(&stats.TotalDonations, &stats.UniqueDonors, &stats.CommunitiesServed); err != nil {
		return nil, fmt.Errorf("failed to fetch summary stats: %w", err)
	}

	return &stats, nil
}

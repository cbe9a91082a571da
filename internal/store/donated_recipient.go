package store

import (
	"context"
	"fmt"
	"time"

	"aidhub/internal/utils"
	"aidhub/pkg/types"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

var donatedRecipientColumns = utils.StructTagValues(types.DonatedRecipient{})

type DonatedRecipientRepository struct {
	pool *pgxpool.Pool
}

func NewDonatedRecipientRepository(pool *pgxpool.Pool) *DonatedRecipientRepository {
	return &DonatedRecipientRepository{pool: pool}
}

// History returns every completed match, newest first.
func (r *DonatedRecipientRepository) History(ctx context.Context) ([]*types.DonatedRecipient, error) {

	query, args, err := psql().Select(donatedRecipientColumns...).From(donatedRecipientTableName).
		OrderBy("transaction_date DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate history query: %w", err)
	}

	var out = make([]*types.DonatedRecipient, 0)
	err = pgxscan.Select(ctx, r.pool, &out, query, args...)
	if err != nil {
		return nil, utils.ErrorWrapOrNil(err, "failed to fetch history")
	}

	return out, nil
}

// CreateDonatedRecipient appends a snapshot outside a match. Used by the seeder.
func (r *DonatedRecipientRepository) CreateDonatedRecipient(ctx context.Context, donated *types.DonatedRecipient) error {
	return insertDonatedRecipient(ctx, r.pool, donated)
}

func insertDonatedRecipient(ctx context.Context, q querier, donated *types.DonatedRecipient) error {

	donated.ID = utils.NanoID()
	if donated.TransactionDate.IsZero() {
		donated.TransactionDate = time.Now()
	}
	if donated.DonorName == "" {
		donated.DonorName = types.AnonymousDonor
	}

	query, args, err := psql().Insert(donatedRecipientTableName).SetMap(utils.StructToMap(donated)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert donated recipient query: %w", err)
	}

	_, err = q.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create donated recipient")
}

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

var recipientColumns = utils.StructTagValues(types.Recipient{})

type RecipientRepository struct {
	pool *pgxpool.Pool
}

func NewRecipientRepository(pool *pgxpool.Pool) *RecipientRepository {
	return &RecipientRepository{pool: pool}
}

func (r *RecipientRepository) Recipient(ctx context.Context, recipientID string) (*types.Recipient, error) {
	return recipientByID(ctx, r.pool, recipientID, false)
}

func recipientByID(ctx context.Context, q querier, recipientID string, forUpdate bool) (*types.Recipient, error) {

	builder := psql().Select(recipientColumns...).From(recipientTableName).
		Where(sq.Eq{"id": recipientID}).
		Limit(1)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipient query: %w", err)
	}

	var recipient = new(types.Recipient)
	err = pgxscan.Get(ctx, q, recipient, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("failed to fetch recipient %s: %w", recipientID, err)
	}

	if err != nil {
		return nil, types.ErrRecipientNotFound
	}

	return recipient, nil
}

// RecipientsByType returns open recipients of a donation type, oldest first.
func (r *RecipientRepository) RecipientsByType(ctx context.Context, donationType string) ([]*types.Recipient, error) {

	query, args, err := psql().Select(recipientColumns...).From(recipientTableName).
		Where(sq.Eq{"donation_type": donationType}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipients by type query: %w", err)
	}

	var recipients = make([]*types.Recipient, 0)
	err = pgxscan.Select(ctx, r.pool, &recipients, query, args...)
	if err != nil {
		return nil, utils.ErrorWrapOrNil(err, "failed to fetch recipients by type")
	}

	return recipients, nil
}

func (r *RecipientRepository) CreateRecipient(ctx context.Context, recipient *types.Recipient) error {

	recipient.ID = utils.NanoID()
	recipient.CreatedAt = time.Now()

	query, args, err := psql().Insert(recipientTableName).SetMap(utils.StructToMap(recipient)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert recipient query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create recipient")
}

// TopTypes returns the most requested donation types among open recipients.
func (r *RecipientRepository) TopTypes(ctx context.Context, limit uint64) ([]*types.TypeCount, error) {

	query, args, err := psql().
		Select("donation_type", "count(id) AS count").
		From(recipientTableName).
		GroupBy("donation_type").
		OrderBy("count DESC", "donation_type ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate top types query: %w", err)
	}

	var out = make([]*types.TypeCount, 0)
	err = pgxscan.Select(ctx, r.pool, &out, query, args...)
	if err != nil {
		return nil, utils.ErrorWrapOrNil(err, "failed to fetch top types")
	}

	return out, nil
}

func (r *RecipientRepository) CurrentNeeds(ctx context.Context) ([]*types.CurrentNeed, error) {

	query, args, err := psql().
		Select("donation_type", "urgency", "location").
		From(recipientTableName).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate current needs query: %w", err)
	}

	var out = make([]*types.CurrentNeed, 0)
	err = pgxscan.Select(ctx, r.pool, &out, query, args...)
	if err != nil {
		return nil, utils.ErrorWrapOrNil(err, "failed to fetch current needs")
	}

	return out, nil
}

package store

import (
	"context"
	"fmt"

	"aidhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchBuilder turns the locked recipient into the records a match creates.
// Returning an error aborts the transaction and leaves the recipient in place.
type MatchBuilder func(recipient *types.Recipient) (*types.Donation, *types.DonatedRecipient, error)

type MatchRepository struct {
	pool *pgxpool.Pool
}

func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

// RecordMatch consumes a recipient in one transaction: the recipient row is
// locked, the DonatedRecipient snapshot and the Donation are inserted and the
// recipient is deleted. Either all three mutations apply or none do.
func (r *MatchRepository) RecordMatch(ctx context.Context, recipientID string, build MatchBuilder) (*types.Match, error) {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	recipient, err := recipientByID(ctx, tx, recipientID, true)
	if err != nil {
		return nil, err
	}

	donation, donated, err := build(recipient)
	if err != nil {
		return nil, err
	}

	if err := insertDonatedRecipient(ctx, tx, donated); err != nil {
		return nil, err
	}

	donation.RecipientID = recipient.ID
	donation.RecipientName = recipient.Name
	if err := insertDonation(ctx, tx, donation); err != nil {
		return nil, err
	}

	query, args, err := psql().Delete(recipientTableName).Where(sq.Eq{"id": recipient.ID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate delete recipient query for recipient %s: %w", recipient.ID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete matched recipient: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return nil, fmt.Errorf("expected to delete 1 recipient, deleted %d", tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &types.Match{
		Donation:  donation,
		Donated:   donated,
		Recipient: recipient,
	}, nil
}

// Reset deletes every row from all tables.
func (r *MatchRepository) Reset(ctx context.Context) error {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, table := range []string{donatedRecipientTableName, recipientTableName, donationTableName} {
		query, args, err := psql().Delete(table).ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate delete query for %s: %w", table, err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

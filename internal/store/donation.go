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

var donationColumns = utils.StructTagValues(types.Donation{})

type DonationRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRepository(pool *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{pool: pool}
}

func (r *DonationRepository) Donation(ctx context.Context, donationID string) (*types.Donation, error) {

	query, args, err := psql().Select(donationColumns...).From(donationTableName).
		Where(sq.Eq{"id": donationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donation query: %w", err)
	}

	var donation = new(types.Donation)
	err = pgxscan.Get(ctx, r.pool, donation, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("failed to fetch donation %s: %w", donationID, err)
	}

	if err != nil {
		return nil, types.ErrDonationNotFound
	}

	return donation, nil
}

// SetClassification attaches an uploaded photo and its classified category to a donation.
func (r *DonationRepository) SetClassification(ctx context.Context, donationID, imageKey, classifiedType string) error {

	query, args, err := psql().Update(donationTableName).
		Set("image_key", nullable(imageKey)).
		Set("classified_type", nullable(classifiedType)).
		Where(sq.Eq{"id": donationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate donation classification query for donation %s: %w", donationID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update donation classification: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrDonationNotFound
	}

	return nil
}

func insertDonation(ctx context.Context, q querier, donation *types.Donation) error {

	donation.ID = utils.NanoID()
	donation.CreatedAt = time.Now()
	if donation.DonorName == "" {
		donation.DonorName = types.AnonymousDonor
	}

	query, args, err := psql().Insert(donationTableName).SetMap(utils.StructToMap(donation)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert donation query: %w", err)
	}

	_, err = q.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create donation")
}

package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"aidhub/internal/db"
	"aidhub/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to TEST_DATABASE_URL, applies the schema and clears all
// tables. Tests are skipped without it.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, &types.Config{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	require.NoError(t, NewMatchRepository(pool).Reset(ctx))

	return pool
}

func seedRecipient(t *testing.T, pool *pgxpool.Pool) *types.Recipient {
	t.Helper()

	r := &types.Recipient{
		Name:         "Grace Shelter",
		Location:     "Austin, TX",
		Latitude:     30.27,
		Longitude:    -97.74,
		DonationType: "clothes",
		Urgency:      4.5,
		Contact:      "grace@example.com",
		Phone:        "555-0100",
	}
	require.NoError(t, NewRecipientRepository(pool).CreateRecipient(context.Background(), r))
	return r
}

func testMatch(pickup string) MatchBuilder {
	return func(r *types.Recipient) (*types.Donation, *types.DonatedRecipient, error) {
		donated := &types.DonatedRecipient{
			Name:             r.Name,
			Location:         r.Location,
			Latitude:         r.Latitude,
			Longitude:        r.Longitude,
			DonationType:     r.DonationType,
			Urgency:          r.Urgency,
			RecipientContact: r.Contact,
			RecipientPhone:   r.Phone,
			DonorContact:     "donor@example.com",
			PickupLocation:   pickup,
			TransactionDate:  time.Now(),
		}
		donation := &types.Donation{
			DonorContact:   "donor@example.com",
			DonationType:   r.DonationType,
			PickupLocation: pickup,
		}
		return donation, donated, nil
	}
}

func counts(t *testing.T, pool *pgxpool.Pool) (recipients, donations, donated int) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+recipientTableName).Scan(&recipients))
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+donationTableName).Scan(&donations))
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+donatedRecipientTableName).Scan(&donated))
	return
}

func TestRecordMatchCommits(t *testing.T) {
	pool := testPool(t)
	r := seedRecipient(t, pool)
	repo := NewMatchRepository(pool)

	match, err := repo.RecordMatch(context.Background(), r.ID, testMatch("123 Main St"))
	require.NoError(t, err)

	recipients, donations, donated := counts(t, pool)
	assert.Equal(t, 0, recipients)
	assert.Equal(t, 1, donations)
	assert.Equal(t, 1, donated)

	assert.Equal(t, r.ID, match.Donation.RecipientID)
	assert.Equal(t, types.AnonymousDonor, match.Donation.DonorName)

	stored, err := NewDonationRepository(pool).Donation(context.Background(), match.Donation.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace Shelter", stored.RecipientName)

	_, err = repo.RecordMatch(context.Background(), r.ID, testMatch("123 Main St"))
	assert.ErrorIs(t, err, types.ErrRecipientNotFound)
}

func TestRecordMatchBuilderErrorRollsBack(t *testing.T) {
	pool := testPool(t)
	r := seedRecipient(t, pool)

	_, err := NewMatchRepository(pool).RecordMatch(context.Background(), r.ID, func(*types.Recipient) (*types.Donation, *types.DonatedRecipient, error) {
		return nil, nil, errors.New("abort")
	})
	require.Error(t, err)

	recipients, donations, donated := counts(t, pool)
	assert.Equal(t, 1, recipients)
	assert.Equal(t, 0, donations)
	assert.Equal(t, 0, donated)
}

func TestRecordMatchInsertFailureRollsBack(t *testing.T) {
	pool := testPool(t)
	r := seedRecipient(t, pool)

	// The snapshot insert succeeds before the donation insert rejects the NUL byte.
	build := func(rec *types.Recipient) (*types.Donation, *types.DonatedRecipient, error) {
		donation, donated, err := testMatch("123 Main St")(rec)
		donation.PickupLocation = "bad\x00pickup"
		return donation, donated, err
	}

	_, err := NewMatchRepository(pool).RecordMatch(context.Background(), r.ID, build)
	require.Error(t, err)

	recipients, donations, donated := counts(t, pool)
	assert.Equal(t, 1, recipients)
	assert.Equal(t, 0, donations)
	assert.Equal(t, 0, donated)

	stored, err := NewRecipientRepository(pool).Recipient(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Urgency, stored.Urgency)
}

func TestStatsAggregates(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	stats := NewStatsRepository(pool)

	empty, err := stats.CurrentUrgency(ctx, "clothes")
	require.NoError(t, err)
	assert.Equal(t, types.UrgencyStats{}, empty)

	seedRecipient(t, pool)
	r := seedRecipient(t, pool)
	_, err = NewMatchRepository(pool).RecordMatch(ctx, r.ID, testMatch("Main St"))
	require.NoError(t, err)

	current, err := stats.CurrentUrgency(ctx, "clothes")
	require.NoError(t, err)
	assert.Equal(t, int64(1), current.Count)
	assert.InDelta(t, 4.5, current.Avg, 1e-9)
	assert.InDelta(t, 0, current.StdDev, 1e-9)

	historical, err := stats.HistoricalUrgency(ctx, "clothes", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), historical.Count)

	old, err := stats.HistoricalUrgency(ctx, "clothes", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), old.Count)

	summary, err := stats.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalDonations)
	assert.Equal(t, int64(1), summary.UniqueDonors)
	assert.Equal(t, int64(1), summary.CommunitiesServed)

	top, err := NewRecipientRepository(pool).TopTypes(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(1), top[0].Count)
}

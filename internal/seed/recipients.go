package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"aidhub/internal/urgency"
	"aidhub/internal/utils"
	"aidhub/pkg/types"

	"github.com/sirupsen/logrus"
)

// Marker prefixes the message of every seeded recipient.
const Marker = "[seed]"

type RecipientCreator interface {
	CreateRecipient(ctx context.Context, recipient *types.Recipient) error
}

type DonatedRecipientCreator interface {
	CreateDonatedRecipient(ctx context.Context, donated *types.DonatedRecipient) error
}

type Options struct {
	Recipients int
	History    int
	// HistoryWindow spreads history transaction dates over the past window.
	HistoryWindow time.Duration
	Rand          *rand.Rand
	Now           func() time.Time
}

// Seed creates demo open recipients and completed matches.
func Seed(
	ctx context.Context,
	logger logrus.FieldLogger,
	recipients RecipientCreator,
	donated DonatedRecipientCreator,
	opts Options,
) error {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	window := opts.HistoryWindow
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}

	for i := 0; i < opts.History; i++ {
		record := fakeDonatedRecipient(rng, now(), window)
		if err := donated.CreateDonatedRecipient(ctx, record); err != nil {
			return fmt.Errorf("failed to create fake donated recipient %d: %w", i+1, err)
		}
	}
	logger.WithField("count", opts.History).Info("donation history seeded")

	for i := 0; i < opts.Recipients; i++ {
		recipient := fakeRecipient(rng)
		if err := recipients.CreateRecipient(ctx, recipient); err != nil {
			return fmt.Errorf("failed to create fake recipient %d: %w", i+1, err)
		}
	}
	logger.WithField("count", opts.Recipients).Info("recipients seeded")

	return nil
}

func fakeRecipient(rng *rand.Rand) *types.Recipient {
	p := places[rng.Intn(len(places))]
	name := recipientNames[rng.Intn(len(recipientNames))]
	message := fmt.Sprintf("%s %s", Marker, requestMessages[rng.Intn(len(requestMessages))])

	return &types.Recipient{
		Name:         name,
		Location:     p.Name,
		Latitude:     p.Coords.Latitude,
		Longitude:    p.Coords.Longitude,
		DonationType: pickWeightedType(rng),
		Urgency:      randomUrgency(rng),
		Contact:      contactFor(name),
		Phone:        fmt.Sprintf("555-%04d", rng.Intn(10000)),
		Message:      utils.StringPtr(message),
	}
}

func fakeDonatedRecipient(rng *rand.Rand, now time.Time, window time.Duration) *types.DonatedRecipient {
	p := places[rng.Intn(len(places))]
	name := recipientNames[rng.Intn(len(recipientNames))]
	donor := donorNames[rng.Intn(len(donorNames))]
	age := time.Duration(rng.Int63n(int64(window)))

	return &types.DonatedRecipient{
		Name:             name,
		Location:         p.Name,
		Latitude:         p.Coords.Latitude,
		Longitude:        p.Coords.Longitude,
		DonationType:     pickWeightedType(rng),
		Urgency:          randomUrgency(rng),
		DonorName:        donor,
		RecipientContact: contactFor(name),
		RecipientPhone:   fmt.Sprintf("555-%04d", rng.Intn(10000)),
		DonorContact:     contactFor(donor),
		DonorPhone:       fmt.Sprintf("555-%04d", rng.Intn(10000)),
		PickupLocation:   places[rng.Intn(len(places))].Name,
		TransactionDate:  now.Add(-age),
	}
}

func randomUrgency(rng *rand.Rand) float64 {
	u := urgency.MinUrgency + rng.Float64()*(urgency.MaxUrgency-urgency.MinUrgency)
	return utils.RoundFloat64(u, 2)
}

func contactFor(name string) string {
	local := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ':
			return '.'
		default:
			return -1
		}
	}, name)
	return local + "+seed@example.com"
}

func pickWeightedType(rng *rand.Rand) string {
	total := 0
	for _, item := range weightedTypes {
		total += item.Weight
	}

	roll := rng.Intn(total)
	running := 0
	for _, item := range weightedTypes {
		running += item.Weight
		if roll < running {
			return item.DonationType
		}
	}

	return weightedTypes[0].DonationType
}

package ranking

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"aidhub/internal/geo"
	"aidhub/internal/urgency"
	"aidhub/pkg/types"
)

const (
	distanceWeight = 0.3
	urgencyWeight  = 0.7
)

type Estimator interface {
	Estimate(ctx context.Context, location, donationType string) urgency.Estimate
}

type Resolver interface {
	Resolve(ctx context.Context, location string) (types.Coordinates, bool)
}

type RecipientSource interface {
	RecipientsByType(ctx context.Context, donationType string) ([]*types.Recipient, error)
}

type Result struct {
	Recipients       []*types.RankedRecipient
	DonorCoordinates types.Coordinates
	DonorLocation    string
}

type Composer struct {
	resolver   Resolver
	recipients RecipientSource
	estimator  Estimator
}

func NewComposer(resolver Resolver, recipients RecipientSource, estimator Estimator) *Composer {
	return &Composer{
		resolver:   resolver,
		recipients: recipients,
		estimator:  estimator,
	}
}

// Candidates geocodes the donor and returns open recipients of donationType,
// best match first. An unresolvable location is a validation error; no open
// recipients of the type is a not-found error.
func (c *Composer) Candidates(ctx context.Context, donationType, donorLocation string) (*Result, error) {
	donationType = strings.ToLower(strings.TrimSpace(donationType))

	donor, ok := c.resolver.Resolve(ctx, donorLocation)
	if !ok {
		return nil, types.ErrInvalidLocation
	}

	recipients, err := c.recipients.RecipientsByType(ctx, donationType)
	if err != nil {
		return nil, types.NewError(types.KindData, "ranking.Candidates", "failed to load recipients", err)
	}

	if len(recipients) == 0 {
		return nil, types.ErrNoMatches
	}

	return &Result{
		Recipients:       Rank(ctx, donor, recipients, c.estimator),
		DonorCoordinates: donor,
		DonorLocation:    donorLocation,
	}, nil
}

// SortKey is lower for closer, more urgent recipients.
func SortKey(distanceKm, urgency float64) float64 {
	return distanceWeight*distanceKm - urgencyWeight*urgency
}

// Rank orders recipients by SortKey ascending. Equal keys fall back to the
// older request first, then to the smaller id.
func Rank(ctx context.Context, donor types.Coordinates, recipients []*types.Recipient, estimator Estimator) []*types.RankedRecipient {
	confidence := make(map[string]float64)
	ranked := make([]*types.RankedRecipient, 0, len(recipients))

	for _, r := range recipients {
		// Confidence depends only on the type's statistics.
		conf, ok := confidence[r.DonationType]
		if !ok {
			conf = estimator.Estimate(ctx, r.Location, r.DonationType).Confidence
			confidence[r.DonationType] = conf
		}

		ranked = append(ranked, &types.RankedRecipient{
			Recipient:  r,
			Confidence: conf,
			Distance:   geo.DistanceKm(donor, types.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}),
		})
	}

	slices.SortFunc(ranked, func(a, b *types.RankedRecipient) int {
		return cmp.Or(
			cmp.Compare(SortKey(a.Distance, a.Urgency), SortKey(b.Distance, b.Urgency)),
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})

	return ranked
}

// Package urgency estimates how pressing a new request of a donation type is,
// from the urgency of open requests and of requests matched recently.
package urgency

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"aidhub/internal/metrics"
	"aidhub/internal/utils"
	"aidhub/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	MinUrgency = 1.5
	MaxUrgency = 5.0

	DefaultUrgency    = 3.0
	DefaultConfidence = 0.5

	currentWeight    = 0.7
	historicalWeight = 0.3

	maxDataConfidence     = 0.8
	samplesForConfidence  = 20.0
	minConsistency        = 0.2
	stdDevScale           = 5.0
	dataConfidenceWeight  = 0.6
	consistencyConfWeight = 0.4

	noiseStdDev = 0.3
)

type StatsSource interface {
	CurrentUrgency(ctx context.Context, donationType string) (types.UrgencyStats, error)
	HistoricalUrgency(ctx context.Context, donationType string, since time.Time) (types.UrgencyStats, error)
}

type Estimate struct {
	Urgency    float64
	Confidence float64
}

type Estimator struct {
	stats  StatsSource
	window time.Duration
	logger logrus.FieldLogger

	// noise returns a standard normal sample.
	noise func() float64
	now   func() time.Time
}

type Option func(*Estimator)

// WithNoise replaces the standard normal source, mostly for tests.
func WithNoise(noise func() float64) Option {
	return func(e *Estimator) { e.noise = noise }
}

func WithClock(now func() time.Time) Option {
	return func(e *Estimator) { e.now = now }
}

func New(stats StatsSource, window time.Duration, logger logrus.FieldLogger, opts ...Option) *Estimator {
	e := &Estimator{
		stats:  stats,
		window: window,
		logger: logger,
		noise:  rand.NormFloat64,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate never fails: when statistics cannot be read it logs and returns the defaults.
// location is accepted for providers that may weigh it later; it does not affect the result.
func (e *Estimator) Estimate(ctx context.Context, location, donationType string) Estimate {
	current, err := e.stats.CurrentUrgency(ctx, donationType)
	if err != nil {
		e.logFailure(err, donationType)
		return defaults()
	}

	historical, err := e.stats.HistoricalUrgency(ctx, donationType, e.now().Add(-e.window))
	if err != nil {
		e.logFailure(err, donationType)
		return defaults()
	}

	return e.combine(current, historical)
}

func (e *Estimator) combine(current, historical types.UrgencyStats) Estimate {
	combined := current.Avg
	if historical.Avg > 0 {
		combined = currentWeight*current.Avg + historicalWeight*historical.Avg
	}

	if combined == 0 {
		return defaults()
	}

	samples := float64(current.Count + historical.Count)
	dataConfidence := math.Min(maxDataConfidence, samples/samplesForConfidence)

	avgStd := current.StdDev
	if historical.StdDev > 0 {
		avgStd = (current.StdDev + historical.StdDev) / 2
	}
	consistency := math.Max(minConsistency, 1-avgStd/stdDevScale)

	confidence := dataConfidenceWeight*dataConfidence + consistencyConfWeight*consistency

	return Estimate{
		Urgency:    utils.Clamp(combined+noiseStdDev*e.noise(), MinUrgency, MaxUrgency),
		Confidence: utils.Clamp(confidence, 0, 1),
	}
}

func (e *Estimator) logFailure(err error, donationType string) {
	metrics.UrgencyFallbacksTotal.Inc()
	e.logger.WithError(types.NewError(types.KindData, "urgency.Estimate", "failed to aggregate urgency", err)).
		WithField("donation_type", donationType).
		Error("error in urgency prediction")
}

func defaults() Estimate {
	return Estimate{Urgency: DefaultUrgency, Confidence: DefaultConfidence}
}

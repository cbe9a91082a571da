package geo

import (
	"context"
	"errors"
	"strings"
	"time"

	"aidhub/internal/breaker"
	"aidhub/internal/metrics"
	"aidhub/pkg/types"

	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Result is a successful geocoding lookup from any provider.
type Result struct {
	Latitude    float64
	Longitude   float64
	Provider    string
	DisplayName string
}

type Geocoder interface {
	Geocode(ctx context.Context, location string) (*Result, error)
}

// Resolver is the best-effort front for a Geocoder. Every failure collapses
// to "not found"; the cause is logged, never returned.
type Resolver struct {
	geocoder Geocoder
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker[*Result]
	logger   logrus.FieldLogger
}

func NewResolver(geocoder Geocoder, timeout time.Duration, logger logrus.FieldLogger) *Resolver {
	cfg := breaker.DefaultConfig("geocoder")
	// Not-found, invalid and locally throttled lookups are not provider failures.
	cfg.IsSuccessful = func(err error) bool {
		switch TypeOf(err) {
		case ErrorTypeNotFound, ErrorTypeInvalidRequest, ErrorTypeThrottled:
			return true
		}
		return err == nil
	}

	return &Resolver{
		geocoder: geocoder,
		timeout:  timeout,
		breaker:  breaker.New[*Result](cfg, logger),
		logger:   logger,
	}
}

// Resolve returns the coordinates of location and whether they were found.
func (r *Resolver) Resolve(ctx context.Context, location string) (types.Coordinates, bool) {
	location = strings.TrimSpace(location)
	if location == "" {
		return types.Coordinates{}, false
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	result, err := r.breaker.Execute(func() (*Result, error) {
		return r.geocoder.Geocode(ctx, location)
	})
	if err != nil {
		entry := r.logger.WithError(err).WithField("location", location)
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.GeocodeLookupsTotal.WithLabelValues("error").Inc()
			entry.Warn("geocoder circuit open")
		case TypeOf(err) == ErrorTypeNotFound:
			metrics.GeocodeLookupsTotal.WithLabelValues("not_found").Inc()
			entry.Info("location not found")
		case TypeOf(err) == ErrorTypeThrottled:
			metrics.GeocodeLookupsTotal.WithLabelValues("throttled").Inc()
			entry.Warn("geocoding throttled")
		default:
			metrics.GeocodeLookupsTotal.WithLabelValues("error").Inc()
			entry.WithField("error_type", TypeOf(err).String()).Error("geocoding error")
		}
		return types.Coordinates{}, false
	}

	metrics.GeocodeLookupsTotal.WithLabelValues("found").Inc()
	return types.Coordinates{Latitude: result.Latitude, Longitude: result.Longitude}, true
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aidhub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aidhub_matches_total",
			Help: "Donation matches by outcome",
		},
		[]string{"outcome"}, // "committed", "not_found", "failed"
	)

	RecipientsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aidhub_recipients_created_total",
			Help: "Recipients registered by donation type",
		},
		[]string{"donation_type"},
	)

	GeocodeLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aidhub_geocode_lookups_total",
			Help: "Geocoding lookups by result",
		},
		[]string{"result"}, // "found", "not_found", "throttled", "error"
	)

	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aidhub_image_classifications_total",
			Help: "Donation photos classified by category",
		},
		[]string{"category"},
	)

	UrgencyFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aidhub_urgency_fallbacks_total",
			Help: "Urgency estimates that fell back to defaults after an aggregation error",
		},
	)

	MailFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aidhub_mail_failures_total",
			Help: "Match notification batches that failed to send",
		},
	)
)

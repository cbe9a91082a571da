package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"aidhub/internal/matching"
	"aidhub/internal/ranking"
	"aidhub/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Ranker interface {
	Candidates(ctx context.Context, donationType, donorLocation string) (*ranking.Result, error)
}

type Matcher interface {
	AddRecipient(ctx context.Context, req *types.CreateRecipientRequest) (*matching.Registration, error)
	Donate(ctx context.Context, req *types.DonateRequest) (*types.Match, error)
}

type NeedsReader interface {
	TopTypes(ctx context.Context, limit uint64) ([]*types.TypeCount, error)
	CurrentNeeds(ctx context.Context) ([]*types.CurrentNeed, error)
}

type HistoryReader interface {
	History(ctx context.Context) ([]*types.DonatedRecipient, error)
}

type StatsReader interface {
	TypeStats(ctx context.Context) ([]*types.TypeStat, error)
	Summary(ctx context.Context) (*types.SummaryStats, error)
}

type DonationStore interface {
	Donation(ctx context.Context, donationID string) (*types.Donation, error)
	SetClassification(ctx context.Context, donationID, imageKey, classifiedType string) error
}

type Classifier interface {
	Classify(ctx context.Context, image []byte) (types.Classification, error)
}

type ImageStore interface {
	UploadImage(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteImage(ctx context.Context, key string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators behind the API. Images is optional;
// without it classified photos are not stored.
type Dependencies struct {
	Ranker     Ranker
	Matcher    Matcher
	Needs      NeedsReader
	History    HistoryReader
	Stats      StatsReader
	Donations  DonationStore
	Classifier Classifier
	Images     ImageStore
	DB         Pinger
}

type Service struct {
	logger logrus.FieldLogger
	config *types.Config
	deps   Dependencies

	handler http.Handler
	server  *http.Server
}

func New(config *types.Config, logger logrus.FieldLogger, deps Dependencies) *Service {
	mux := flow.New()

	s := &Service{
		logger: logger,
		config: config,
		deps:   deps,
	}

	s.buildRouter(mux)

	// Unmatched paths never reach flow middleware, so slashes are stripped in front of the mux.
	s.handler = s.StripTrailingSlash(mux)
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed API for in-process use.
func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.Handler(), http.MethodGet)

	r.HandleFunc("/api/trending", s.handleTrending, http.MethodGet)
	r.HandleFunc("/api/recipients", s.handleRecipients, http.MethodGet)
	r.HandleFunc("/api/add_recipient", s.handleAddRecipient, http.MethodPost)
	r.HandleFunc("/api/current_needs", s.handleCurrentNeeds, http.MethodGet)

	r.HandleFunc("/api/donate", s.handleDonate, http.MethodPost)
	r.HandleFunc("/api/history", s.handleHistory, http.MethodGet)
	r.HandleFunc("/api/summary_stats", s.handleSummaryStats, http.MethodGet)

	r.HandleFunc("/api/classify", s.handleClassify, http.MethodPost)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aidhub/internal/db"
	"aidhub/internal/geo"
	"aidhub/internal/imagecat"
	"aidhub/internal/mail"
	"aidhub/internal/matching"
	"aidhub/internal/ranking"
	"aidhub/internal/server"
	"aidhub/internal/storage"
	"aidhub/internal/store"
	"aidhub/internal/urgency"
	"aidhub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger := newLogger(config.LogLevel)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	recipientRepo := store.NewRecipientRepository(pool)
	donationRepo := store.NewDonationRepository(pool)
	donatedRepo := store.NewDonatedRecipientRepository(pool)
	statsRepo := store.NewStatsRepository(pool)
	matchRepo := store.NewMatchRepository(pool)

	resolver := geo.NewResolver(
		newGeocoder(config),
		time.Duration(config.GeocoderTimeout)*time.Second,
		logger.WithField("component", "geocoder"),
	)

	estimator := urgency.New(
		statsRepo,
		time.Duration(config.HistoryWindowDays)*24*time.Hour,
		logger.WithField("component", "urgency"),
	)

	table, err := imagecat.LoadTable(config.CategoryTablePath)
	if err != nil {
		return err
	}
	mapper := imagecat.NewMapper(table, logger.WithField("component", "imagecat"))
	classifier := imagecat.NewClassifier(
		config.ClassifierURL,
		time.Duration(config.ClassifierTimeoutSec)*time.Second,
		mapper,
		&http.Client{},
		logger.WithField("component", "classifier"),
	)
	logger.WithFields(logrus.Fields{
		"version":    mapper.Version(),
		"categories": len(mapper.Categories()),
	}).Info("category table loaded")

	sender := mail.NewSender(config, logger.WithField("component", "mail"))

	deps := server.Dependencies{
		Ranker:     ranking.NewComposer(resolver, recipientRepo, estimator),
		Matcher:    matching.NewService(resolver, estimator, recipientRepo, matchRepo, sender, logger.WithField("component", "matching")),
		Needs:      recipientRepo,
		History:    donatedRepo,
		Stats:      statsRepo,
		Donations:  donationRepo,
		Classifier: classifier,
		DB:         pool,
	}

	if config.ImageBucket != "" {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		deps.Images = storage.NewImageStore(s3.NewFromConfig(awsConfig), config.ImageBucket)
		logger.WithField("bucket", config.ImageBucket).Info("donation photo storage enabled")
	}

	srv := server.New(config, logger, deps)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func newGeocoder(config *types.Config) geo.Geocoder {
	client := &http.Client{Timeout: time.Duration(config.GeocoderTimeout) * time.Second}

	if config.GeocoderProvider == "google" {
		return geo.NewGoogleMapsGeocoder("", config.GoogleMapsAPIKey, client)
	}

	return geo.NewNominatimGeocoder("", config.GeocoderUserAgent, client)
}

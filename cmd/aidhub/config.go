package main

import (
	"context"
	"fmt"
	"strings"

	"aidhub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// loadConfig reads prefixed variables first, falling back to the bare names.
func loadConfig(cCtx *cli.Context) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process(cCtx.String("env-prefix"), c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	if c.HistoryWindowDays == 0 {
		c.HistoryWindowDays = 30
	}

	c.GeocoderProvider = strings.ToLower(strings.TrimSpace(c.GeocoderProvider))
	switch c.GeocoderProvider {
	case "", "nominatim":
		c.GeocoderProvider = "nominatim"
	case "google":
		if c.GoogleMapsAPIKey == "" {
			return nil, fmt.Errorf("set GOOGLE_MAPS_API_KEY to use the google geocoder")
		}
	default:
		return nil, fmt.Errorf("unknown GEOCODER_PROVIDER %q", c.GeocoderProvider)
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithError(err).WithField("level", level).Warn("invalid log level, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

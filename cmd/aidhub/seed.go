package main

import (
	"context"
	"fmt"
	"time"

	"aidhub/internal/db"
	"aidhub/internal/seed"
	"aidhub/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo recipients and donation history",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "recipients",
			Usage: "Number of open recipients to create",
			Value: 30,
		},
		&cli.IntFlag{
			Name:  "history",
			Usage: "Number of completed matches to create",
			Value: 60,
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Delete all existing data first",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		if c.Bool("reset") {
			if err := store.NewMatchRepository(pool).Reset(ctx); err != nil {
				return fmt.Errorf("failed to reset data: %w", err)
			}
			logrus.Info("Existing data deleted")
		}

		return seed.Seed(ctx, logrus.StandardLogger(),
			store.NewRecipientRepository(pool),
			store.NewDonatedRecipientRepository(pool),
			seed.Options{
				Recipients:    c.Int("recipients"),
				History:       c.Int("history"),
				HistoryWindow: time.Duration(cfg.HistoryWindowDays) * 24 * time.Hour,
			},
		)
	},
}

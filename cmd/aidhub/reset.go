package main

import (
	"context"
	"fmt"

	"aidhub/internal/db"
	"aidhub/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var resetCommand = &cli.Command{
	Name:  "reset",
	Usage: "Delete all recipients, donations and donation history",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "yes",
			Usage: "Confirm deleting all data",
		},
	},
	Action: func(c *cli.Context) error {
		if !c.Bool("yes") {
			return fmt.Errorf("refusing to delete all data without --yes")
		}

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

		if err := store.NewMatchRepository(pool).Reset(ctx); err != nil {
			return err
		}

		logrus.Info("All data deleted")
		return nil
	},
}

package main

import (
	"fmt"
	"strconv"

	"aidhub/internal/imagecat"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var categoryCommand = &cli.Command{
	Name:      "category",
	Usage:     "Map classifier output indices to donation categories",
	ArgsUsage: "[index...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "table",
			Usage:   "Category table YAML, defaults to the embedded table",
			EnvVars: []string{"CATEGORY_TABLE_PATH"},
		},
	},
	Action: func(c *cli.Context) error {
		table, err := imagecat.LoadTable(c.String("table"))
		if err != nil {
			return err
		}

		mapper := imagecat.NewMapper(table, logrus.StandardLogger())

		if c.NArg() == 0 {
			fmt.Printf("version %s, max gap %d\n", table.Version, table.MaxGap)
			for _, cat := range table.Categories {
				for _, r := range cat.Ranges {
					fmt.Printf("%-12s [%d, %d)\n", cat.Name, r.Start, r.End)
				}
			}
			return nil
		}

		for _, arg := range c.Args().Slice() {
			index, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", arg, err)
			}

			category, err := mapper.Category(index)
			if err != nil {
				return err
			}
			fmt.Printf("%d\t%s\n", index, category)
		}

		return nil
	},
}

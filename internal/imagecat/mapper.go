package imagecat

import (
	"fmt"
	"math"

	"aidhub/pkg/types"

	"github.com/sirupsen/logrus"
)

// Mapper remaps generic classifier indices onto donation categories.
type Mapper struct {
	table  *types.CategoryTable
	logger logrus.FieldLogger
}

func NewMapper(table *types.CategoryTable, logger logrus.FieldLogger) *Mapper {
	return &Mapper{table: table, logger: logger}
}

func (m *Mapper) Version() string {
	return m.table.Version
}

// Categories lists the category names in table order, followed by "other".
func (m *Mapper) Categories() []string {
	out := make([]string, 0, len(m.table.Categories)+1)
	for _, c := range m.table.Categories {
		out = append(out, c.Name)
	}
	return append(out, types.CategoryOther)
}

// Classify maps a classifier output to a category, keeping its confidence.
// Inputs the table cannot describe yield ("other", 0).
func (m *Mapper) Classify(index int, confidence float64) types.Classification {
	category, err := m.Category(index)
	if err != nil {
		m.logger.WithError(err).WithField("class_index", index).Error("error mapping category")
		return types.Classification{Category: types.CategoryOther, Confidence: 0}
	}

	return types.Classification{Category: category, Confidence: confidence}
}

// Category returns the first category whose ranges contain index. Otherwise the
// category with the nearest range boundary wins if it lies within MaxGap; ties
// go to the earlier category.
func (m *Mapper) Category(index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("class index %d out of range", index)
	}

	for _, c := range m.table.Categories {
		for _, r := range c.Ranges {
			if index >= r.Start && index < r.End {
				return c.Name, nil
			}
		}
	}

	best, bestDistance := types.CategoryOther, math.MaxInt
	for _, c := range m.table.Categories {
		for _, r := range c.Ranges {
			if d := rangeDistance(index, r); d < bestDistance {
				best, bestDistance = c.Name, d
			}
		}
	}

	if bestDistance <= m.table.MaxGap {
		return best, nil
	}

	return types.CategoryOther, nil
}

// rangeDistance is the distance from index to the closest member of r.
func rangeDistance(index int, r types.IndexRange) int {
	switch {
	case index < r.Start:
		return r.Start - index
	case index >= r.End:
		return index - (r.End - 1)
	default:
		return 0
	}
}

package types

const CategoryOther = "other"

// IndexRange is a half-open range [Start, End) of classifier output indices.
type IndexRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type CategoryRanges struct {
	Name   string       `yaml:"name"`
	Ranges []IndexRange `yaml:"ranges"`
}

// CategoryTable is the versioned index-to-category mapping. Order matters:
// the first category containing an index wins.
type CategoryTable struct {
	Version    string           `yaml:"version"`
	MaxGap     int              `yaml:"max_gap"`
	Categories []CategoryRanges `yaml:"categories"`
}

type Classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

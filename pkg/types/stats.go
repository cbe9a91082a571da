package types

// UrgencyStats are the urgency aggregates over one population of records.
// Avg and StdDev are zero when Count is zero.
type UrgencyStats struct {
	Avg    float64 `db:"avg"`
	StdDev float64 `db:"std"`
	Count  int64   `db:"count"`
}

type Trend struct {
	Type    string `json:"type"`
	Count   int64  `json:"count"`
	Message string `json:"message"`
}

type TypeCount struct {
	DonationType string `db:"donation_type"`
	Count        int64  `db:"count"`
}

type TypeStat struct {
	DonationType string  `db:"donation_type" json:"donation_type"`
	Count        int64   `db:"count" json:"count"`
	AvgUrgency   float64 `db:"avg_urgency" json:"avg_urgency"`
}

type SummaryStats struct {
	TotalDonations    int64 `json:"total_donations"`
	UniqueDonors      int64 `json:"unique_donors"`
	CommunitiesServed int64 `json:"communities_served"`
}

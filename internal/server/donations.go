package server

import (
	"context"
	"net/http"
	"time"

	"aidhub/pkg/types"
)

type donateResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Details donationDetails `json:"details"`
}

type donationDetails struct {
	DonationID string `json:"donation_id"`
	Donor      string `json:"donor"`
	Recipient  string `json:"recipient"`
	Type       string `json:"type"`
}

type transactionView struct {
	RecipientName    string    `json:"recipient_name"`
	Location         string    `json:"location"`
	DonationType     string    `json:"donation_type"`
	DonorName        string    `json:"donor_name"`
	RecipientContact string    `json:"recipient_contact"`
	DonorContact     string    `json:"donor_contact"`
	PickupLocation   string    `json:"pickup_location"`
	Date             time.Time `json:"date"`
}

type historyResponse struct {
	Transactions []*transactionView `json:"transactions"`
	TypeStats    []*types.TypeStat  `json:"type_stats"`
	Error        string             `json:"error,omitempty"`
}

func (s *Service) handleDonate(w http.ResponseWriter, r *http.Request) {
	var req = new(types.DonateRequest)
	if err := decodeJSON(r, req); err != nil {
		s.writeError(w, r, err)
		return
	}

	match, err := s.deps.Matcher.Donate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, donateResponse{
		Success: true,
		Message: "Donation successful",
		Details: donationDetails{
			DonationID: match.Donation.ID,
			Donor:      match.Donation.DonorName,
			Recipient:  match.Recipient.Name,
			Type:       req.DonationType,
		},
	})
}

// handleHistory reports an empty history with the error message when the
// store is unavailable.
func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	empty := historyResponse{Transactions: []*transactionView{}, TypeStats: []*types.TypeStat{}}

	history, err := s.deps.History.History(ctx)
	if err != nil {
		s.logger.WithError(err).Error("error getting donation history")
		empty.Error = "Error getting donation history"
		s.writeJSON(w, http.StatusOK, empty)
		return
	}

	stats, err := s.deps.Stats.TypeStats(ctx)
	if err != nil {
		s.logger.WithError(err).Error("error getting donation type stats")
		empty.Error = "Error getting donation history"
		s.writeJSON(w, http.StatusOK, empty)
		return
	}

	transactions := make([]*transactionView, 0, len(history))
	for _, h := range history {
		transactions = append(transactions, &transactionView{
			RecipientName:    h.Name,
			Location:         h.Location,
			DonationType:     h.DonationType,
			DonorName:        h.DonorName,
			RecipientContact: h.RecipientContact,
			DonorContact:     h.DonorContact,
			PickupLocation:   h.PickupLocation,
			Date:             h.TransactionDate,
		})
	}

	for _, stat := range stats {
		stat.DonationType = capitalize(stat.DonationType)
	}

	s.writeJSON(w, http.StatusOK, historyResponse{Transactions: transactions, TypeStats: stats})
}

// handleSummaryStats reports zeros when the store is unavailable.
func (s *Service) handleSummaryStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	summary, err := s.deps.Stats.Summary(ctx)
	if err != nil {
		s.logger.WithError(err).Error("error getting summary stats")
		summary = new(types.SummaryStats)
	}

	s.writeJSON(w, http.StatusOK, summary)
}

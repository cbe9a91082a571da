package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"aidhub/internal/validation"
	"aidhub/pkg/types"
)

const trendingLimit = 3

type trendingResponse struct {
	Message string         `json:"message"`
	Trends  []*types.Trend `json:"trends"`
}

type recipientsResponse struct {
	Recipients       []*types.RankedRecipient `json:"recipients"`
	DonorCoordinates types.Coordinates        `json:"donor_coordinates"`
	DonorLocation    string                   `json:"donor_location"`
}

type addRecipientResponse struct {
	Success     bool    `json:"success"`
	Message     string  `json:"message"`
	RecipientID string  `json:"recipient_id"`
	Urgency     float64 `json:"urgency"`
	Confidence  float64 `json:"confidence"`
}

type currentNeedsResponse struct {
	Success bool                 `json:"success"`
	Needs   []*types.CurrentNeed `json:"needs"`
}

// handleTrending degrades to an empty list rather than failing the dashboard.
func (s *Service) handleTrending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	counts, err := s.deps.Needs.TopTypes(ctx, trendingLimit)
	if err != nil {
		s.logger.WithError(err).Error("error getting trends")
		s.writeJSON(w, http.StatusOK, trendingResponse{Message: "Error getting trends", Trends: []*types.Trend{}})
		return
	}

	trends := make([]*types.Trend, 0, len(counts))
	for _, c := range counts {
		name := capitalize(c.DonationType)
		trends = append(trends, &types.Trend{
			Type:    name,
			Count:   c.Count,
			Message: fmt.Sprintf("%s (requested %d times)", name, c.Count),
		})
	}

	s.writeJSON(w, http.StatusOK, trendingResponse{Message: "Current Donation Needs", Trends: trends})
}

func (s *Service) handleRecipients(w http.ResponseWriter, r *http.Request) {
	var search = new(types.RecipientSearch)
	if err := decoder.Decode(search, r.URL.Query()); err != nil {
		s.writeError(w, r, types.NewError(types.KindValidation, "server.handleRecipients", "Invalid query parameters", err))
		return
	}

	if err := validation.Struct(search); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.deps.Ranker.Candidates(r.Context(), search.Type, search.Location)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, recipientsResponse{
		Recipients:       result.Recipients,
		DonorCoordinates: result.DonorCoordinates,
		DonorLocation:    result.DonorLocation,
	})
}

func (s *Service) handleAddRecipient(w http.ResponseWriter, r *http.Request) {
	var req = new(types.CreateRecipientRequest)
	if err := decodeJSON(r, req); err != nil {
		s.writeError(w, r, err)
		return
	}

	reg, err := s.deps.Matcher.AddRecipient(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, addRecipientResponse{
		Success: true,
		Message: fmt.Sprintf(
			"Recipient added successfully! Urgency level %.2f/5.0 (confidence: %.2f%%)",
			reg.Estimate.Urgency, reg.Estimate.Confidence*100,
		),
		RecipientID: reg.Recipient.ID,
		Urgency:     reg.Estimate.Urgency,
		Confidence:  reg.Estimate.Confidence,
	})
}

func (s *Service) handleCurrentNeeds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	needs, err := s.deps.Needs.CurrentNeeds(ctx)
	if err != nil {
		s.logger.WithError(err).Error("error fetching current needs")
		s.internalServerError(w, "Error fetching current needs")
		return
	}

	s.writeJSON(w, http.StatusOK, currentNeedsResponse{Success: true, Needs: needs})
}

package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"aidhub/internal/imagecat"
	"aidhub/internal/storage"
	"aidhub/pkg/types"
)

type classifyForm struct {
	DonationID string `form:"donation_id"`
}

type classifyResponse struct {
	Success    bool    `json:"success"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	DonationID string  `json:"donation_id,omitempty"`
	ImageKey   string  `json:"image_key,omitempty"`
}

func (s *Service) handleClassify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imagecat.MaxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(imagecat.MaxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, types.ValidationError("Image file too large"))
			return
		}
		s.writeError(w, r, types.NewError(types.KindValidation, "server.handleClassify", "Invalid multipart form", err))
		return
	}

	var fields = new(classifyForm)
	if err := decoder.Decode(fields, r.MultipartForm.Value); err != nil {
		s.writeError(w, r, types.NewError(types.KindValidation, "server.handleClassify", "Invalid form fields", err))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, r, types.ValidationError("No image file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, imagecat.MaxImageBytes+1))
	if err != nil {
		s.writeError(w, r, types.NewError(types.KindValidation, "server.handleClassify", "Unable to read image", err))
		return
	}

	contentType, err := imagecat.DetectImage(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var donation *types.Donation
	if fields.DonationID != "" {
		donation, err = s.deps.Donations.Donation(r.Context(), fields.DonationID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	result, err := s.deps.Classifier.Classify(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := classifyResponse{Success: true, Category: result.Category, Confidence: result.Confidence}
	if donation == nil {
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var imageKey string
	if s.deps.Images != nil {
		imageKey, err = s.deps.Images.UploadImage(ctx, storage.ImageKey(donation.ID, contentType), data, contentType)
		if err != nil {
			s.writeError(w, r, types.NewError(types.KindExternal, "server.handleClassify", "Failed to store image", err))
			return
		}
	}

	// A zero confidence means the model gave no answer; classified_type stays NULL.
	category := result.Category
	if result.Confidence == 0 {
		category = ""
	}

	if err := s.deps.Donations.SetClassification(ctx, donation.ID, imageKey, category); err != nil {
		if imageKey != "" {
			if delErr := s.deps.Images.DeleteImage(ctx, imageKey); delErr != nil {
				s.logger.WithError(delErr).WithField("image_key", imageKey).Error("error removing unreferenced donation image")
			}
		}
		s.writeError(w, r, err)
		return
	}

	resp.DonationID = donation.ID
	resp.ImageKey = imageKey
	s.writeJSON(w, http.StatusOK, resp)
}

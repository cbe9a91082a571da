package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode"

	"aidhub/pkg/types"

	"github.com/sirupsen/logrus"
)

const maxJSONBodyBytes = 1 << 20

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// writeError maps the error kind to a status. The client sees the Message of
// any *types.Error, whatever its kind; other errors read "internal server error".
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	message := types.PublicMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"path": r.URL.Path,
			"kind": types.KindOf(err).String(),
		}).Error("request failed")
	}

	s.writeJSON(w, status, errorResponse{Error: message})
}

func (s *Service) internalServerError(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: message})
}

func statusFor(err error) int {
	switch types.KindOf(err) {
	case types.KindValidation:
		return http.StatusBadRequest
	case types.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return types.ValidationError("Request body is empty")
		}
		return types.NewError(types.KindValidation, "server.decodeJSON", "Invalid JSON data provided", err)
	}
	return nil
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	runes := []rune(s)
	for i := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(runes[i])
			continue
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeRateLimit
	ErrorTypeQuotaExceeded
	ErrorTypeTimeout
	ErrorTypeNotFound
	ErrorTypeInvalidRequest
	ErrorTypeNetwork
	// ErrorTypeThrottled means the request never left the process: the local
	// rate limiter gave up waiting for a slot.
	ErrorTypeThrottled
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeQuotaExceeded:
		return "quota_exceeded"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeInvalidRequest:
		return "invalid_request"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeThrottled:
		return "throttled"
	default:
		return "unknown"
	}
}

// GeocodingError is returned by providers so the resolver can log why a lookup failed.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func errNotFound(location string) error {
	return &GeocodingError{Type: ErrorTypeNotFound, Message: fmt.Sprintf("no results found for location: %s", location)}
}

// TypeOf classifies err, recognising timeouts that did not come from a provider.
func TypeOf(err error) ErrorType {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	return ErrorTypeUnknown
}

// ClassifyHTTPStatus maps a non-200 provider response to an error.
func ClassifyHTTPStatus(statusCode int) *GeocodingError {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &GeocodingError{Type: ErrorTypeRateLimit, Message: "rate limit reached"}
	case http.StatusForbidden:
		return &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "quota exceeded or access denied"}
	case http.StatusBadRequest:
		return &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "invalid request"}
	case http.StatusNotFound:
		return &GeocodingError{Type: ErrorTypeNotFound, Message: "location not found"}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodingError{Type: ErrorTypeNetwork, Message: fmt.Sprintf("service unavailable (status %d)", statusCode)}
	default:
		return &GeocodingError{Type: ErrorTypeUnknown, Message: fmt.Sprintf("http error %d", statusCode)}
	}
}

package types

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindValidation covers missing or malformed input, including unresolvable locations.
	KindValidation
	KindNotFound
	// KindData covers aggregation and persistence failures.
	KindData
	// KindExternal covers geocoder, classifier, storage and mail failures.
	KindExternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindData:
		return "data"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Error carries a kind so callers can classify failures without string matching.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

func ValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFoundError(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// PublicMessage returns the message safe to show to API clients.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}

var (
	ErrRecipientNotFound = &Error{Kind: KindNotFound, Message: "recipient not found"}
	ErrDonationNotFound  = &Error{Kind: KindNotFound, Message: "donation not found"}
	ErrInvalidLocation   = &Error{Kind: KindValidation, Message: "Invalid location"}
	ErrNoMatches         = &Error{Kind: KindNotFound, Message: "No matching recipients found"}
)

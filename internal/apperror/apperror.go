// Package apperror defines the closed set of errors surfaced to callers of the gateway,
// the auth flow and the reservation aggregator.
package apperror

import (
	"errors"
	"net/http"

	"github.com/brizzai/resy-client/internal/models"
)

// Kind identifies one member of the error taxonomy
type Kind string

const (
	KindInvalidPhoneNumber  Kind = "invalidPhoneNumber"
	KindInvalidCode         Kind = "invalidCode"
	KindAuthenticationError Kind = "authenticationError"
	KindTooManyRequests     Kind = "tooManyRequests"
	KindNetworkError        Kind = "networkError"
	KindInvalidRequest      Kind = "invalidRequest"
	KindServerError         Kind = "serverError"
	KindInvalidResponse     Kind = "invalidResponse"
	KindNoAvailability      Kind = "noAvailability"
	KindBookingFailed       Kind = "bookingFailed"
	KindUnknown             Kind = "unknown"
	KindChallengeRequired   Kind = "challengeRequired"
)

var messages = map[Kind]string{
	KindInvalidPhoneNumber:  "Invalid phone number",
	KindInvalidCode:         "Invalid verification code",
	KindAuthenticationError: "Authentication failed",
	KindTooManyRequests:     "Too many attempts. Please try again later",
	KindNetworkError:        "Network connection error. Please check your internet connection and try again.",
	KindInvalidRequest:      "Invalid request. Please try again.",
	KindServerError:         "Server error. Please try again later.",
	KindInvalidResponse:     "Invalid response from server. Please try again.",
	KindNoAvailability:      "No availability for selected time",
	KindBookingFailed:       "Failed to book reservation",
	KindUnknown:             "An unknown error occurred. Please try again.",
	KindChallengeRequired:   "Additional verification required. Please enter your email address.",
}

var statuses = map[Kind]int{
	KindInvalidPhoneNumber:  http.StatusBadRequest,
	KindInvalidCode:         http.StatusBadRequest,
	KindAuthenticationError: http.StatusUnauthorized,
	KindTooManyRequests:     http.StatusTooManyRequests,
	KindNetworkError:        http.StatusBadGateway,
	KindInvalidRequest:      http.StatusBadRequest,
	KindServerError:         http.StatusBadGateway,
	KindInvalidResponse:     http.StatusBadGateway,
	KindNoAvailability:      http.StatusConflict,
	KindBookingFailed:       http.StatusBadGateway,
	KindUnknown:             http.StatusInternalServerError,
	KindChallengeRequired:   http.StatusUnauthorized,
}

// Message returns the static human-readable message for k
func (k Kind) Message() string {
	if msg, ok := messages[k]; ok {
		return msg
	}
	return messages[KindUnknown]
}

// HTTPStatus returns the status the proxy answers with for k
func (k Kind) HTTPStatus() int {
	if status, ok := statuses[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a taxonomy error. Err carries the underlying cause for logging only.
type Error struct {
	Kind      Kind
	Challenge *models.ChallengeResponse
	Err       error
}

// Sentinels for errors.Is matching by kind
var (
	ErrInvalidPhoneNumber = &Error{Kind: KindInvalidPhoneNumber}
	ErrInvalidCode        = &Error{Kind: KindInvalidCode}
	ErrAuthentication     = &Error{Kind: KindAuthenticationError}
	ErrTooManyRequests    = &Error{Kind: KindTooManyRequests}
	ErrNetwork            = &Error{Kind: KindNetworkError}
	ErrInvalidRequest     = &Error{Kind: KindInvalidRequest}
	ErrServer             = &Error{Kind: KindServerError}
	ErrInvalidResponse    = &Error{Kind: KindInvalidResponse}
	ErrNoAvailability     = &Error{Kind: KindNoAvailability}
	ErrBookingFailed      = &Error{Kind: KindBookingFailed}
	ErrUnknown            = &Error{Kind: KindUnknown}
	ErrChallengeRequired  = &Error{Kind: KindChallengeRequired}
)

// New returns an error of kind k
func New(k Kind) *Error {
	return &Error{Kind: k}
}

// Wrap returns an error of kind k caused by err
func Wrap(k Kind, err error) *Error {
	return &Error{Kind: k, Err: err}
}

// ChallengeRequired returns the continuation error carrying the provider's challenge
func ChallengeRequired(c *models.ChallengeResponse) *Error {
	return &Error{Kind: KindChallengeRequired, Challenge: c}
}

func (e *Error) Error() string {
	return e.Kind.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or KindUnknown for errors outside the taxonomy
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// AsChallenge returns the challenge carried by err, if any
func AsChallenge(err error) (*models.ChallengeResponse, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindChallengeRequired && e.Challenge != nil {
		return e.Challenge, true
	}
	return nil, false
}

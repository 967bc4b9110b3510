package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAlreadyRefunded = errors.New("purchase already fully refunded")
	ErrPaymentDeclined = errors.New("payment was declined")
)

// ValidationError covers malformed or missing input. Never retried, always 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError identifies a missing referenced entity.
type NotFoundError struct {
	Kind string // "ticket type", "purchase", "rsvp"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// InsufficientAvailabilityError means a reserve lost the race for remaining
// units of a ticket type. The caller may retry with a smaller quantity.
type InsufficientAvailabilityError struct {
	TicketTypeID string
}

func (e *InsufficientAvailabilityError) Error() string {
	return fmt.Sprintf("insufficient availability for ticket type %s", e.TicketTypeID)
}

// ExceedsRemainingCapacityError means a check-in asked for more seats than the
// RSVP's un-admitted balance.
type ExceedsRemainingCapacityError struct {
	Remaining int
}

func (e *ExceedsRemainingCapacityError) Error() string {
	return fmt.Sprintf("check-in exceeds remaining capacity (%d left)", e.Remaining)
}

// TransientError wraps store/network failures worth retrying with backoff.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient store error: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// HTTPStatus maps the error taxonomy onto response codes: 400 validation,
// 404 missing entity, 409 business-rule conflict, 402 payment declined,
// 500 everything else.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		ia *InsufficientAvailabilityError
		ec *ExceedsRemainingCapacityError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ia), errors.As(err, &ec), errors.Is(err, ErrAlreadyRefunded):
		return http.StatusConflict
	case errors.Is(err, ErrPaymentDeclined):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

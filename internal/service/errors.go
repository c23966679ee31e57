package service

import (
	"errors"
	"strings"

	"rental/internal/calendar"
	"rental/internal/domain"
)

var (
	// ErrInvalidSessionID is returned when session ID is empty.
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrInvalidVehicleID is returned when vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrDatesRequired is returned when either end of a date range is missing.
	ErrDatesRequired = errors.New("please select both start and end dates")

	// ErrPastStart is returned when the start date is before today.
	ErrPastStart = errors.New("start date cannot be in the past")

	// ErrEndBeforeStart is returned when the end date precedes the start date.
	ErrEndBeforeStart = errors.New("end date must be after start date")

	// ErrUnavailable is returned when a valid range overlaps booked dates.
	ErrUnavailable = errors.New("vehicle is not available for selected dates")

	// ErrValidation is returned when customer details fail validation.
	ErrValidation = errors.New("invalid customer details")

	// ErrInvalidPaymentMethod is returned when payment method is not one of the accepted methods.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrIncompleteState is returned when a stage is attempted before its predecessors.
	ErrIncompleteState = errors.New("booking is incomplete")

	// ErrPaymentInProgress is returned when confirm is attempted while a payment is running.
	ErrPaymentInProgress = errors.New("payment already in progress")

	// ErrBookingAbandoned is returned when the session changed while the payment was running.
	ErrBookingAbandoned = errors.New("booking was abandoned during payment")

	// ErrPaymentCancelled is returned by a payment task that was cancelled before it resolved.
	ErrPaymentCancelled = errors.New("payment cancelled")

	// ErrAlreadyConfirmed is returned when a confirmed session is edited without starting over.
	ErrAlreadyConfirmed = errors.New("booking already confirmed")

	// ErrNotConfirmed is returned when a confirmation is requested before one exists.
	ErrNotConfirmed = errors.New("booking not confirmed")

	// ErrInvalidFilter is returned when catalog filter values are malformed.
	ErrInvalidFilter = errors.New("invalid filter")
)

// ErrInvalidDate re-exports the calendar parse error for handlers.
var ErrInvalidDate = calendar.ErrInvalidDate

// DateRangeError reports a range that failed validation.
type DateRangeError struct {
	Result RangeResult
}

func (e *DateRangeError) Error() string {
	return e.Unwrap().Error()
}

func (e *DateRangeError) Unwrap() error {
	if e.Result == RangePastStart {
		return ErrPastStart
	}
	return ErrEndBeforeStart
}

// UnavailableError reports a valid range that overlaps booked dates.
type UnavailableError struct {
	VehicleID string
	Conflicts []calendar.Date
}

func (e *UnavailableError) Error() string {
	return ErrUnavailable.Error()
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// ValidationReason enumerates why a customer field was rejected.
type ValidationReason string

const (
	ReasonRequired ValidationReason = "required"
	ReasonInvalid  ValidationReason = "invalid"
)

// ValidationError reports a single rejected customer field.
type ValidationError struct {
	Field  string
	Reason ValidationReason
}

// Message returns the user-facing message for the field.
func (e ValidationError) Message() string {
	switch e.Field + "/" + string(e.Reason) {
	case "name/required":
		return "Name is required"
	case "phone/required":
		return "Phone number is required"
	case "phone/invalid":
		return "Please enter a valid phone number"
	case "email/required":
		return "Email is required"
	case "email/invalid":
		return "Please enter a valid email address"
	}
	return e.Field + " is " + string(e.Reason)
}

// ValidationErrors holds one entry per rejected field.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message()
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e ValidationErrors) Unwrap() error {
	return ErrValidation
}

// IncompleteStateError reports a stage attempted without its predecessor data.
// The caller is expected to send the customer back to Redirect.
type IncompleteStateError struct {
	Current  domain.SessionState
	Required domain.SessionState
	Redirect domain.SessionState
}

func (e *IncompleteStateError) Error() string {
	return ErrIncompleteState.Error() + ": requires " + string(e.Required) + ", session is " + string(e.Current)
}

func (e *IncompleteStateError) Unwrap() error {
	return ErrIncompleteState
}

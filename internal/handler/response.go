package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rental/internal/calendar"
	"rental/internal/repository"
	"rental/internal/service"
)

// ErrorCode enumerates the error kinds a client can branch on.
type ErrorCode string

const (
	CodeInvalidRequest       ErrorCode = "INVALID_REQUEST"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeDatesRequired        ErrorCode = "DATES_REQUIRED"
	CodeInvalidDate          ErrorCode = "INVALID_DATE"
	CodePastStart            ErrorCode = "PAST_START"
	CodeEndBeforeStart       ErrorCode = "END_BEFORE_START"
	CodeUnavailable          ErrorCode = "UNAVAILABLE"
	CodeValidation           ErrorCode = "VALIDATION_FAILED"
	CodeInvalidPaymentMethod ErrorCode = "INVALID_PAYMENT_METHOD"
	CodeInvalidFilter        ErrorCode = "INVALID_FILTER"
	CodeIncomplete           ErrorCode = "INCOMPLETE_BOOKING"
	CodePaymentInProgress    ErrorCode = "PAYMENT_IN_PROGRESS"
	CodeAbandoned            ErrorCode = "BOOKING_ABANDONED"
	CodeAlreadyConfirmed     ErrorCode = "ALREADY_CONFIRMED"
	CodeNotConfirmed         ErrorCode = "NOT_CONFIRMED"
	CodeInternal             ErrorCode = "INTERNAL"
)

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     string       `json:"error"`
	Code      ErrorCode    `json:"code"`
	Fields    []FieldError `json:"fields,omitempty"`
	Conflicts []string     `json:"conflicts,omitempty"`
	Redirect  string       `json:"redirect,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	status := mapErrorToHTTPStatus(err)
	resp := ErrorResponse{Error: err.Error(), Code: mapErrorToCode(err)}

	var verrs service.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Error = service.ErrValidation.Error()
		for _, fe := range verrs {
			resp.Fields = append(resp.Fields, FieldError{
				Field:   fe.Field,
				Reason:  string(fe.Reason),
				Message: fe.Message(),
			})
		}
	}

	var unavailable *service.UnavailableError
	if errors.As(err, &unavailable) {
		resp.Conflicts = dateStrings(unavailable.Conflicts)
	}

	var incomplete *service.IncompleteStateError
	if errors.As(err, &incomplete) {
		resp.Redirect = string(incomplete.Redirect)
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, resp)
}

// respondBadRequest sends a 400 for a request that could not be decoded.
func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: CodeInvalidRequest})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidSessionID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrDatesRequired),
		errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, service.ErrPastStart),
		errors.Is(err, service.ErrEndBeforeStart),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidFilter):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrUnavailable),
		errors.Is(err, service.ErrIncompleteState),
		errors.Is(err, service.ErrPaymentInProgress),
		errors.Is(err, service.ErrBookingAbandoned),
		errors.Is(err, service.ErrAlreadyConfirmed),
		errors.Is(err, service.ErrNotConfirmed):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

func mapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, service.ErrInvalidSessionID), errors.Is(err, service.ErrInvalidVehicleID):
		return CodeInvalidRequest
	case errors.Is(err, service.ErrDatesRequired):
		return CodeDatesRequired
	case errors.Is(err, calendar.ErrInvalidDate):
		return CodeInvalidDate
	case errors.Is(err, service.ErrPastStart):
		return CodePastStart
	case errors.Is(err, service.ErrEndBeforeStart):
		return CodeEndBeforeStart
	case errors.Is(err, service.ErrUnavailable):
		return CodeUnavailable
	case errors.Is(err, service.ErrValidation):
		return CodeValidation
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		return CodeInvalidPaymentMethod
	case errors.Is(err, service.ErrInvalidFilter):
		return CodeInvalidFilter
	case errors.Is(err, service.ErrIncompleteState):
		return CodeIncomplete
	case errors.Is(err, service.ErrPaymentInProgress):
		return CodePaymentInProgress
	case errors.Is(err, service.ErrBookingAbandoned):
		return CodeAbandoned
	case errors.Is(err, service.ErrAlreadyConfirmed):
		return CodeAlreadyConfirmed
	case errors.Is(err, service.ErrNotConfirmed):
		return CodeNotConfirmed
	default:
		return CodeInternal
	}
}

func dateStrings(dates []calendar.Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}

package apierror

import (
	"fmt"
	"net/http"
)

// ErrorResponse is what services hand back to routes. Routes render it
// as JSON with the status returned by Code.
type ErrorResponse interface {
	error
	Code() int
}

type SimpleError struct {
	Status  int           `json:"-"`
	Kind    string        `json:"code"`
	Message string        `json:"message"`
	Details []*FieldIssue `json:"details,omitempty"`
}

type FieldIssue struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (s *SimpleError) Error() string {
	return s.Message
}

func (s *SimpleError) Code() int {
	return s.Status
}

func NewSimple(status int, message string) *SimpleError {
	return &SimpleError{Status: status, Kind: kindFor(status), Message: message}
}

func NewMissingParamError(name string) *SimpleError {
	return &SimpleError{
		Status:  http.StatusBadRequest,
		Kind:    "missing_param",
		Message: fmt.Sprintf("Missing required parameter '%s'", name),
	}
}

func NewInvalidParamTypeError(name, expected string) *SimpleError {
	return &SimpleError{
		Status:  http.StatusBadRequest,
		Kind:    "invalid_param",
		Message: fmt.Sprintf("Parameter '%s' must be of type %s", name, expected),
	}
}

var (
	InternalServerError   = &SimpleError{Status: http.StatusInternalServerError, Kind: "internal", Message: "Something went wrong on our side"}
	NotFoundError         = &SimpleError{Status: http.StatusNotFound, Kind: "not_found", Message: "Resource not found"}
	MalformedBodyError    = &SimpleError{Status: http.StatusBadRequest, Kind: "malformed_body", Message: "Request body could not be parsed"}
	InvalidAuthTokenError = &SimpleError{Status: http.StatusUnauthorized, Kind: "invalid_token", Message: "Missing or invalid auth token"}
	NotLoggedInError      = &SimpleError{Status: http.StatusUnauthorized, Kind: "not_logged_in", Message: "Please log in to continue"}

	SessionNotFoundError   = &SimpleError{Status: http.StatusNotFound, Kind: "session_not_found", Message: "Booking session not found or already closed"}
	InvalidTransitionError = &SimpleError{Status: http.StatusConflict, Kind: "invalid_transition", Message: "Booking is not in a state that allows this action"}
	NoLatestBookingError   = &SimpleError{Status: http.StatusNotFound, Kind: "no_latest_booking", Message: "No recent booking on this device"}
	NoVideoLinkError       = &SimpleError{Status: http.StatusNotFound, Kind: "no_video_link", Message: "Video link is not available for this appointment yet"}
	ShuttingDownError      = &SimpleError{Status: http.StatusServiceUnavailable, Kind: "shutting_down", Message: "Server is shutting down, please try again shortly"}

	IDPUserNotFoundError        = &SimpleError{Status: http.StatusNotFound, Kind: "idp_user_not_found", Message: "No patient account matches these credentials"}
	IDPUserNotConfirmedError    = &SimpleError{Status: http.StatusForbidden, Kind: "idp_user_not_confirmed", Message: "Patient account is not confirmed yet"}
	IDPCredentialsMismatchError = &SimpleError{Status: http.StatusUnauthorized, Kind: "idp_credentials_mismatch", Message: "Email or password is incorrect"}
	IDPSessionExpiredError      = &SimpleError{Status: http.StatusUnauthorized, Kind: "idp_session_expired", Message: "Session expired, please log in again"}
)

func kindFor(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	case status >= 500:
		return "internal"
	default:
		return "bad_request"
	}
}

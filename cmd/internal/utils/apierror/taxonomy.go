package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError rejects malformed user input before anything leaves
// the gateway.
type ValidationError struct {
	Field   string        `json:"field,omitempty"`
	Message string        `json:"message"`
	Kind    string        `json:"code"`
	Details []*FieldIssue `json:"details,omitempty"`
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Kind: "validation"}
}

func (v *ValidationError) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

func (v *ValidationError) Code() int {
	return http.StatusBadRequest
}

// FromValidationError converts validator output into a ValidationError
// listing every failing field.
func FromValidationError(err error) *ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewValidationError("", err.Error())
	}

	issues := make([]*FieldIssue, len(verrs))
	names := make([]string, len(verrs))
	for i, fe := range verrs {
		name := strings.ToLower(fe.Field())
		issues[i] = &FieldIssue{Field: name, Rule: fe.Tag()}
		names[i] = name
	}

	verr := NewValidationError("", "Invalid value for "+strings.Join(names, ", "))
	if len(issues) == 1 {
		verr.Field = issues[0].Field
	}
	verr.Details = issues
	return verr
}

// NetworkError is any failed call to the remote patient API. Message
// carries the remote message when the API supplied one.
type NetworkError struct {
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
	Kind    string `json:"code"`
	Cause   error  `json:"-"`
}

func NewNetworkError(status int, message string, cause error) *NetworkError {
	if message == "" {
		switch {
		case cause != nil:
			message = cause.Error()
		case status != 0:
			message = http.StatusText(status)
		default:
			message = "Network request failed"
		}
	}
	return &NetworkError{Status: status, Message: message, Kind: "network", Cause: cause}
}

func (n *NetworkError) Error() string {
	if n.Status == 0 {
		return "network: " + n.Message
	}
	return fmt.Sprintf("network (%d): %s", n.Status, n.Message)
}

func (n *NetworkError) Unwrap() error {
	return n.Cause
}

// Code keeps auth and lookup failures visible to the caller and folds
// everything else into a bad gateway.
func (n *NetworkError) Code() int {
	switch n.Status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict:
		return n.Status
	}
	return http.StatusBadGateway
}

// AsErrorResponse returns err itself when it already is an ErrorResponse,
// otherwise InternalServerError.
func AsErrorResponse(err error) ErrorResponse {
	if err == nil {
		return nil
	}
	var resp ErrorResponse
	if errors.As(err, &resp) {
		return resp
	}
	return InternalServerError
}

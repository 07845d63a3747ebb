package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is an error surfaced by the eSignature service. The vendor's
// errorCode and message are preserved verbatim.
type APIError struct {
	Operation  string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" || e.Message != "" {
		return fmt.Sprintf("%s: upstream error (%d) %s: %s", e.Operation, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: upstream error (%d)", e.Operation, e.StatusCode)
}

// AsAPIError unwraps err into an *APIError when it carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// errorBody is the vendor's standard error payload.
type errorBody struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

func newAPIError(operation string, status int, raw []byte) *APIError {
	e := &APIError{Operation: operation, StatusCode: status}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		e.Code = body.ErrorCode
		e.Message = body.Message
	}
	if e.Code == "" && e.Message == "" {
		e.Message = strings.TrimSpace(string(raw))
	}
	return e
}

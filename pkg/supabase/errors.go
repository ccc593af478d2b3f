package supabase

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError represents an error response from the hosted backend. Both the
// auth service and the row store report errors as JSON bodies, with slightly
// different shapes; parseErrorResponse normalizes them into this one type.
//
// Message carries the service's own wording and is surfaced verbatim on
// authentication failures.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`

	// Code is the service error code when one was provided (e.g.
	// "invalid_grant" from the auth service, "PGRST116" from the row store).
	Code string `json:"code,omitempty"`

	// Message is the human-readable description from the service.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsAuthError reports whether the error indicates a rejected or expired
// credential rather than a service fault.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// decodeJSON decodes a JSON response into the target, returning a typed
// *APIError when the status code does not match the expected one.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// checkStatus returns a typed error unless the response carries the expected
// status. Used for operations with no response body of interest.
func checkStatus(resp *http.Response, expected ...int) error {
	defer resp.Body.Close()

	for _, code := range expected {
		if resp.StatusCode == code {
			return nil
		}
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	return parseErrorResponse(resp, bodyBytes)
}

// parseErrorResponse normalizes an error body into an *APIError.
// The auth service uses {"error","error_description"} for OAuth-shaped
// failures and {"msg"} (or {"message"}) elsewhere; the row store uses
// {"code","message"}. Unknown bodies fall back to the HTTP status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var raw struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Code             any    `json:"code"`
	}

	if err := json.Unmarshal(body, &raw); err == nil {
		apiErr := &APIError{StatusCode: resp.StatusCode}

		switch {
		case raw.ErrorDescription != "":
			apiErr.Code = raw.Error
			apiErr.Message = raw.ErrorDescription
		case raw.Msg != "":
			apiErr.Message = raw.Msg
		case raw.Message != "":
			apiErr.Message = raw.Message
		case raw.Error != "":
			apiErr.Message = raw.Error
		}

		if code, ok := raw.Code.(string); ok && apiErr.Code == "" {
			apiErr.Code = code
		}

		if apiErr.Message != "" {
			return apiErr
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

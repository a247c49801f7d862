package notion

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingToken is returned when the integration token is not configured
	ErrMissingToken = errors.New("document API token is required")
	// ErrAuthenticationFailed is returned on 401/403 responses; retrying
	// without operator intervention will not help
	ErrAuthenticationFailed = errors.New("document API authentication failed")
	// ErrNotFound is returned when a page, block or user does not exist or
	// the integration has no access to it
	ErrNotFound = errors.New("document API resource not found or no access")
	// ErrTransport is returned for connection-level failures; these are
	// retryable at the job level
	ErrTransport = errors.New("document API transport error")
	// ErrMissingPageID is returned when a page operation is called without an ID
	ErrMissingPageID = errors.New("page ID is required")
	// ErrMissingBlockID is returned when a block operation is called without an ID
	ErrMissingBlockID = errors.New("block ID is required")
	// ErrMissingDatabaseID is returned when a database query is called without an ID
	ErrMissingDatabaseID = errors.New("database ID is required")
	// ErrMissingUserID is returned when a user lookup is called without an ID
	ErrMissingUserID = errors.New("user ID is required")
)

// APIError is returned for HTTP error statuses outside the dedicated
// sentinels above. Remediation inspects the status to recognize
// unarchivable workspace-root pages.
type APIError struct {
	// Status is the HTTP status code returned by the API
	Status int
	// Message is the error message from the response body, when captured
	Message string
}

// Error renders the API error with its status code
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error: %d: %s", e.Status, e.Message)
	}

	return fmt.Sprintf("API error: %d", e.Status)
}

// IsClientError reports whether the status is in the 400 class
func (e *APIError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

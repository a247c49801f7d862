package detect

import "errors"

var (
	// ErrMissingAccountID is returned when the backend account ID is not configured
	ErrMissingAccountID = errors.New("detector account ID is required")
	// ErrMissingAPIToken is returned when the backend API token is not configured
	ErrMissingAPIToken = errors.New("detector API token is required")
	// ErrRequestFailed is returned when a detection request fails at the
	// transport level
	ErrRequestFailed = errors.New("detector request failed")
	// ErrUnexpectedStatus is returned when the backend returns an
	// unexpected HTTP status
	ErrUnexpectedStatus = errors.New("unexpected detector response status")
	// ErrAnalysisFailed is returned when the backend reply cannot be
	// parsed into a detection result; the pipeline treats this as any
	// other detection error and fails open
	ErrAnalysisFailed = errors.New("detector analysis failed")
)

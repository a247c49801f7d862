package slack

import "errors"

var (
	// ErrMissingBotToken is returned when the Slack bot token is not configured
	ErrMissingBotToken = errors.New("slack bot token is required")
	// ErrRequestFailed is returned when a Slack API request fails at the
	// transport level
	ErrRequestFailed = errors.New("slack API request failed")
	// ErrUnexpectedStatus is returned when Slack returns an unexpected HTTP status
	ErrUnexpectedStatus = errors.New("unexpected slack API response status")
	// ErrUserNotFound is returned when no Slack user matches the email
	ErrUserNotFound = errors.New("slack user not found")
	// ErrAPIError is returned when Slack reports a non-ok response
	ErrAPIError = errors.New("slack API error")
)

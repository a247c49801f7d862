// Package slack is the messaging-platform adapter: it resolves users by
// email, opens direct channels and delivers notification messages.
package slack

import (
	"net/http"
	"time"
)

const (
	// defaultBaseURL is the root endpoint for the Slack Web API
	defaultBaseURL = "https://slack.com/api"
	// defaultRequestTimeout is the default timeout for Slack API requests
	defaultRequestTimeout = 10 * time.Second
)

// Client talks to the Slack Web API on behalf of a bot user
type Client struct {
	botToken   string
	httpClient *http.Client
	baseURL    string
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for the Slack client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default Slack API base URL
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// New creates a new Slack Web API client
func New(botToken string, opts ...Option) (*Client, error) {
	if botToken == "" {
		return nil, ErrMissingBotToken
	}

	client := &Client{
		botToken:   botToken,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		baseURL:    defaultBaseURL,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// apiURL constructs the full API URL for a given method
func (c *Client) apiURL(method string) string {
	return c.baseURL + "/" + method
}

// Package notion is the HTTP adapter for the workspace document API. It
// fetches pages, block trees, database rows and user records and archives
// pages; no business logic lives here.
package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/theopenlane/httpsling"
)

const (
	// defaultBaseURL is the root endpoint for the document API
	defaultBaseURL = "https://api.notion.com/v1"
	// defaultRequestTimeout bounds each outbound call so a hung dependency
	// cannot occupy a worker slot indefinitely
	defaultRequestTimeout = 15 * time.Second
	// apiVersionHeader carries the dated API version required on every call
	apiVersionHeader = "Notion-Version"
	// apiVersion is the API revision this client speaks
	apiVersion = "2022-06-28"
	// defaultMaxRetries caps transparent retries of transient transport
	// failures; HTTP error statuses are never retried here
	defaultMaxRetries = 2
	// listPageSize is the page size requested on paginated list endpoints
	listPageSize = "100"
)

// Client provides access to the document API
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	maxRetries uint64
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base URL
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithMaxRetries overrides the transient-failure retry cap
func WithMaxRetries(retries uint64) Option {
	return func(c *Client) {
		c.maxRetries = retries
	}
}

// New creates a document API client with the provided integration token
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	client := &Client{
		token:      token,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		baseURL:    defaultBaseURL,
		maxRetries: defaultMaxRetries,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// apiURL constructs the full API URL for a given path
func (c *Client) apiURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, path)
}

// receive issues a request built from the given options, decodes the JSON
// response into out, and normalizes failures into the package error
// taxonomy. Transient transport failures are retried with exponential
// backoff; HTTP error statuses are permanent.
func (c *Client) receive(ctx context.Context, out any, opts ...httpsling.Option) error {
	base := []httpsling.Option{
		httpsling.BearerAuth(c.token),
		httpsling.Header(apiVersionHeader, apiVersion),
		httpsling.WithHTTPClient(c.httpClient),
	}

	requester := httpsling.MustNew(append(base, opts...)...)

	operation := func() error {
		resp, err := requester.ReceiveWithContext(ctx, out)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

		if err := statusError(resp.StatusCode); err != nil {
			return backoff.Permanent(err)
		}

		return nil
	}

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx))
}

// statusError maps an HTTP status code to the package error taxonomy
func statusError(status int) error {
	switch {
	case status >= http.StatusOK && status < http.StatusMultipleChoices:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuthenticationFailed
	case status == http.StatusNotFound:
		return ErrNotFound
	default:
		return &APIError{Status: status}
	}
}

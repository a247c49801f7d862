// Package detect is the AI detection facade. It dispatches extracted page
// content to a text-only or multimodal analysis call against a Workers AI
// style backend and normalizes the structured reply into a DetectionResult.
package detect

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const (
	// defaultBaseURL is the root endpoint for the AI backend
	defaultBaseURL = "https://api.cloudflare.com/client/v4"
	// defaultRequestTimeout bounds detection calls; model inference on
	// large documents can take tens of seconds
	defaultRequestTimeout = 45 * time.Second
	// defaultTextModel handles text-only analysis
	defaultTextModel = "@cf/meta/llama-3.1-8b-instruct"
	// defaultMultimodalModel handles requests that embed attachments
	defaultMultimodalModel = "@cf/llava-hf/llava-1.5-7b-hf"
	// breakerConsecutiveFailures opens the breaker after this many
	// consecutive backend failures; an open breaker degrades detection to
	// fail-open without burning the request timeout on every page
	breakerConsecutiveFailures = 5
	// breakerOpenTimeout is how long the breaker stays open before probing
	breakerOpenTimeout = 30 * time.Second
)

// Client calls the AI detection backend
type Client struct {
	accountID       string
	apiToken        string
	httpClient      *http.Client
	baseURL         string
	textModel       string
	multimodalModel string
	breaker         *gobreaker.CircuitBreaker
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

// WithBaseURL overrides the default backend base URL
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithTextModel overrides the text analysis model
func WithTextModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.textModel = model
		}
	}
}

// WithMultimodalModel overrides the multimodal analysis model
func WithMultimodalModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.multimodalModel = model
		}
	}
}

// New creates a detection client for the given account and token
func New(accountID, apiToken string, opts ...Option) (*Client, error) {
	if accountID == "" {
		return nil, ErrMissingAccountID
	}

	if apiToken == "" {
		return nil, ErrMissingAPIToken
	}

	client := &Client{
		accountID:       accountID,
		apiToken:        apiToken,
		httpClient:      &http.Client{Timeout: defaultRequestTimeout},
		baseURL:         defaultBaseURL,
		textModel:       defaultTextModel,
		multimodalModel: defaultMultimodalModel,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "pii-detector",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
	})

	return client, nil
}

// apiURL constructs the model run URL for this account
func (c *Client) apiURL(model string) string {
	return fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, model)
}

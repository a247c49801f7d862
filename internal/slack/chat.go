package slack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/theopenlane/httpsling"
)

// openConversationRequest is the conversations.open request body
type openConversationRequest struct {
	Users string `json:"users"`
}

// openConversationResponse is the conversations.open envelope
type openConversationResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
}

// postMessageRequest is the chat.postMessage request body
type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// postMessageResponse is the chat.postMessage envelope
type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// OpenDirectChannel opens (or reuses) a direct message channel with the
// given user and returns its channel ID
func (c *Client) OpenDirectChannel(ctx context.Context, userID string) (string, error) {
	requester := httpsling.MustNew(
		httpsling.URL(c.apiURL("conversations.open")),
		httpsling.Post(),
		httpsling.BearerAuth(c.botToken),
		httpsling.JSONBody(openConversationRequest{Users: userID}),
		httpsling.WithHTTPClient(c.httpClient),
	)

	var openResp openConversationResponse

	resp, err := requester.ReceiveWithContext(ctx, &openResp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if !openResp.OK {
		return "", fmt.Errorf("%w: %s", ErrAPIError, openResp.Error)
	}

	return openResp.Channel.ID, nil
}

// PostMessage sends a text message to a channel
func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	requester := httpsling.MustNew(
		httpsling.URL(c.apiURL("chat.postMessage")),
		httpsling.Post(),
		httpsling.BearerAuth(c.botToken),
		httpsling.JSONBody(postMessageRequest{Channel: channelID, Text: text}),
		httpsling.WithHTTPClient(c.httpClient),
	)

	var postResp postMessageResponse

	resp, err := requester.ReceiveWithContext(ctx, &postResp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if !postResp.OK {
		return fmt.Errorf("%w: %s", ErrAPIError, postResp.Error)
	}

	return nil
}

// NotifyUser opens a direct channel with the user and delivers the message
func (c *Client) NotifyUser(ctx context.Context, userID, text string) error {
	channelID, err := c.OpenDirectChannel(ctx, userID)
	if err != nil {
		return err
	}

	return c.PostMessage(ctx, channelID, text)
}

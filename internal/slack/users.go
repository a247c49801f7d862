package slack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/theopenlane/httpsling"
)

// slackUserNotFoundCode is the error code Slack returns when no user
// matches the looked-up email
const slackUserNotFoundCode = "users_not_found"

// User is a Slack user record
type User struct {
	// ID is the Slack user ID
	ID string `json:"id"`
	// Name is the Slack handle
	Name string `json:"name,omitempty"`
	// RealName is the display name
	RealName string `json:"real_name,omitempty"`
}

// lookupByEmailResponse is the users.lookupByEmail envelope
type lookupByEmailResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	User  User   `json:"user"`
}

// LookupUserByEmail resolves a Slack user by email address. A missing user
// maps to ErrUserNotFound so callers can distinguish it from API failures.
func (c *Client) LookupUserByEmail(ctx context.Context, email string) (User, error) {
	if email == "" {
		return User{}, ErrUserNotFound
	}

	requester := httpsling.MustNew(
		httpsling.URL(c.apiURL("users.lookupByEmail")),
		httpsling.Method(http.MethodGet),
		httpsling.QueryParam("email", email),
		httpsling.BearerAuth(c.botToken),
		httpsling.WithHTTPClient(c.httpClient),
	)

	var lookupResp lookupByEmailResponse

	resp, err := requester.ReceiveWithContext(ctx, &lookupResp)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if !lookupResp.OK {
		if lookupResp.Error == slackUserNotFoundCode {
			return User{}, ErrUserNotFound
		}

		return User{}, fmt.Errorf("%w: %s", ErrAPIError, lookupResp.Error)
	}

	return lookupResp.User, nil
}

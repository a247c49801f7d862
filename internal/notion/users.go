package notion

import (
	"context"
	"fmt"
	"net/http"

	"github.com/theopenlane/httpsling"

	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

// GetUser fetches a workspace user record by ID
func (c *Client) GetUser(ctx context.Context, userID string) (types.User, error) {
	if userID == "" {
		return types.User{}, ErrMissingUserID
	}

	var user types.User

	err := c.receive(ctx, &user,
		httpsling.URL(c.apiURL(fmt.Sprintf("users/%s", userID))),
		httpsling.Method(http.MethodGet),
	)
	if err != nil {
		return types.User{}, err
	}

	return user, nil
}

package notion

import (
	"context"
	"fmt"
	"net/http"

	"github.com/theopenlane/httpsling"

	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

// GetPage fetches a single page by ID
func (c *Client) GetPage(ctx context.Context, pageID string) (types.Page, error) {
	if pageID == "" {
		return types.Page{}, ErrMissingPageID
	}

	var page types.Page

	err := c.receive(ctx, &page,
		httpsling.URL(c.apiURL(fmt.Sprintf("pages/%s", pageID))),
		httpsling.Method(http.MethodGet),
	)
	if err != nil {
		return types.Page{}, err
	}

	return page, nil
}

// archiveRequest is the PATCH body that archives a page
type archiveRequest struct {
	Archived bool `json:"archived"`
}

// ArchivePage marks a page as archived. Archiving an already-archived page
// is accepted by the API, keeping the call idempotent. The caller is
// responsible for interpreting 400-class responses on workspace-root pages.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	if pageID == "" {
		return ErrMissingPageID
	}

	var page types.Page

	return c.receive(ctx, &page,
		httpsling.URL(c.apiURL(fmt.Sprintf("pages/%s", pageID))),
		httpsling.Method(http.MethodPatch),
		httpsling.JSONBody(archiveRequest{Archived: true}),
	)
}

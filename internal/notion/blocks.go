package notion

import (
	"context"
	"fmt"
	"net/http"

	"github.com/theopenlane/httpsling"

	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

// blockListResponse is the paginated envelope for block children
type blockListResponse struct {
	Results    []types.Block `json:"results"`
	HasMore    bool          `json:"has_more"`
	NextCursor string        `json:"next_cursor"`
}

// GetBlockChildren fetches the direct children of a block (or page),
// following pagination until exhausted. Nested children are not inlined by
// the API; the extract resolver fetches them on demand.
func (c *Client) GetBlockChildren(ctx context.Context, blockID string) ([]types.Block, error) {
	if blockID == "" {
		return nil, ErrMissingBlockID
	}

	var (
		blocks []types.Block
		cursor string
	)

	for {
		opts := []httpsling.Option{
			httpsling.URL(c.apiURL(fmt.Sprintf("blocks/%s/children", blockID))),
			httpsling.Method(http.MethodGet),
			httpsling.QueryParam("page_size", listPageSize),
		}

		if cursor != "" {
			opts = append(opts, httpsling.QueryParam("start_cursor", cursor))
		}

		var page blockListResponse

		if err := c.receive(ctx, &page, opts...); err != nil {
			return nil, err
		}

		blocks = append(blocks, page.Results...)

		if !page.HasMore || page.NextCursor == "" {
			break
		}

		cursor = page.NextCursor
	}

	return blocks, nil
}

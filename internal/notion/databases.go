package notion

import (
	"context"
	"fmt"

	"github.com/theopenlane/httpsling"

	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

// databaseQueryRequest is the POST body for database queries
type databaseQueryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// databaseQueryResponse is the paginated envelope for database rows
type databaseQueryResponse struct {
	Results    []types.Page `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

// databaseQueryPageSize is the page size for database row queries
const databaseQueryPageSize = 100

// GetDatabaseEntries queries all rows of a database, following pagination
// until exhausted. Rows share the page shape; their properties carry the
// row's cell values.
func (c *Client) GetDatabaseEntries(ctx context.Context, databaseID string) ([]types.Page, error) {
	if databaseID == "" {
		return nil, ErrMissingDatabaseID
	}

	var (
		rows   []types.Page
		cursor string
	)

	for {
		var page databaseQueryResponse

		err := c.receive(ctx, &page,
			httpsling.URL(c.apiURL(fmt.Sprintf("databases/%s/query", databaseID))),
			httpsling.Post(),
			httpsling.JSONBody(databaseQueryRequest{StartCursor: cursor, PageSize: databaseQueryPageSize}),
		)
		if err != nil {
			return nil, err
		}

		rows = append(rows, page.Results...)

		if !page.HasMore || page.NextCursor == "" {
			break
		}

		cursor = page.NextCursor
	}

	return rows, nil
}

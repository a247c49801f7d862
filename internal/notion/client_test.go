package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

func TestNew(t *testing.T) {
	client, err := New("secret-token")
	require.NoError(t, err)

	assert.Equal(t, "secret-token", client.token)
	assert.Equal(t, defaultBaseURL, client.baseURL)
	require.NotNil(t, client.httpClient)
}

func TestNew_MissingToken(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNew_WithHTTPClient(t *testing.T) {
	custom := &http.Client{Timeout: 30 * time.Second}

	client, err := New("secret-token", WithHTTPClient(custom))
	require.NoError(t, err)

	assert.Equal(t, custom, client.httpClient)
}

func TestNew_WithNilHTTPClient(t *testing.T) {
	client, err := New("secret-token", WithHTTPClient(nil))
	require.NoError(t, err)

	assert.NotNil(t, client.httpClient)
}

// newTestClient points a client at a test server with retries disabled
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New("secret-token", WithBaseURL(srv.URL), WithMaxRetries(0))
	require.NoError(t, err)

	return client
}

func TestGetPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/pages/page-1", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, apiVersion, r.Header.Get(apiVersionHeader))

		_ = json.NewEncoder(w).Encode(types.Page{
			ID:     "page-1",
			Parent: types.Parent{Type: "page_id", PageID: "parent-1"},
		})
	})

	page, err := client.GetPage(context.Background(), "page-1")
	require.NoError(t, err)

	assert.Equal(t, "page-1", page.ID)
	assert.False(t, page.IsWorkspaceRoot())
}

func TestGetPage_MissingID(t *testing.T) {
	client, err := New("secret-token")
	require.NoError(t, err)

	_, err = client.GetPage(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingPageID)
}

func TestGetPage_AuthenticationFailed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetPage(context.Background(), "page-1")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestGetPage_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetPage(context.Background(), "page-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPage_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetPage(context.Background(), "page-1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.False(t, apiErr.IsClientError())
}

func TestArchivePage(t *testing.T) {
	var gotBody archiveRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/pages/page-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(types.Page{ID: "page-1", Archived: true})
	})

	require.NoError(t, client.ArchivePage(context.Background(), "page-1"))
	assert.True(t, gotBody.Archived)
}

func TestArchivePage_WorkspaceRootRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"cannot archive a workspace level page"}`))
	})

	err := client.ArchivePage(context.Background(), "root-1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsClientError())
}

func TestGetBlockChildren_Paginates(t *testing.T) {
	calls := 0

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blocks/block-1/children", r.URL.Path)
		calls++

		if r.URL.Query().Get("start_cursor") == "" {
			_ = json.NewEncoder(w).Encode(blockListResponse{
				Results:    []types.Block{{ID: "b1", Type: types.BlockTypeParagraph}},
				HasMore:    true,
				NextCursor: "cursor-2",
			})

			return
		}

		_ = json.NewEncoder(w).Encode(blockListResponse{
			Results: []types.Block{{ID: "b2", Type: types.BlockTypeParagraph}},
		})
	})

	blocks, err := client.GetBlockChildren(context.Background(), "block-1")
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, blocks, 2)
	assert.Equal(t, "b1", blocks[0].ID)
	assert.Equal(t, "b2", blocks[1].ID)
}

func TestGetDatabaseEntries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/databases/db-1/query", r.URL.Path)

		_ = json.NewEncoder(w).Encode(databaseQueryResponse{
			Results: []types.Page{{ID: "row-1"}},
		})
	})

	rows, err := client.GetDatabaseEntries(context.Background(), "db-1")
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "row-1", rows[0].ID)
}

func TestGetUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/user-1", r.URL.Path)

		_ = json.NewEncoder(w).Encode(types.User{
			ID:     "user-1",
			Type:   "person",
			Person: &types.Person{Email: "jane@example.com"},
		})
	})

	user, err := client.GetUser(context.Background(), "user-1")
	require.NoError(t, err)

	require.NotNil(t, user.Person)
	assert.Equal(t, "jane@example.com", user.Person.Email)
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikr/stax/internal/domain"
)

// newTestServer starts a backend stub and a client pointed at it.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL)
}

func TestGetComponent_WrappedEnvelope(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/components/data-grid", r.URL.Path)
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"component": map[string]interface{}{
					"name": "Data Grid",
					"slug": "data-grid",
				},
			},
		})
	})

	component, err := client.GetComponent(context.Background(), "data-grid")
	require.NoError(t, err)
	assert.Equal(t, "Data Grid", component.Name)
	assert.Equal(t, "data-grid", component.Slug)
}

func TestGetComponent_RawPayload(t *testing.T) {
	// Older endpoints skip the {success, data} wrapper entirely.
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"component": map[string]interface{}{
				"name": "Data Grid",
				"slug": "data-grid",
			},
		})
	})

	component, err := client.GetComponent(context.Background(), "data-grid")
	require.NoError(t, err)
	assert.Equal(t, "data-grid", component.Slug)
}

func TestErrorMessageExtraction(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json error field", 404, `{"error":"component not found"}`, "component not found"},
		{"json message field", 400, `{"message":"bad slug"}`, "bad slug"},
		{"raw body fallback", 500, "the server caught fire", "the server caught fire"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := client.GetComponent(context.Background(), "x")
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.message, apiErr.Message)
		})
	}
}

func TestErrorMessage_EmptyBody(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetComponent(context.Background(), "x")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "HTTP 502: 502 Bad Gateway", apiErr.Message)
}

func TestIsNotFoundAndIsUnauthorized(t *testing.T) {
	assert.True(t, IsNotFound(&Error{Status: 404}))
	assert.False(t, IsNotFound(&Error{Status: 500}))
	assert.False(t, IsNotFound(context.Canceled))

	assert.True(t, IsUnauthorized(&Error{Status: 401}))
	assert.True(t, IsUnauthorized(&Error{Status: 403}))
	assert.False(t, IsUnauthorized(&Error{Status: 404}))
}

func TestWithToken(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user": map[string]interface{}{"username": "octocat"},
		})
	})

	authed := client.WithToken("tok-123")
	profile, err := authed.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", profile.User.Username)

	// The original client stays anonymous.
	assert.Empty(t, client.token)
}

func TestListComponents_QueryParams(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "grid", q.Get("q"))
		assert.Equal(t, "react", q.Get("framework"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("limit"))
		json.NewEncoder(w).Encode(ComponentList{
			Page:  2,
			Limit: 20,
			Total: 45,
			Components: []domain.Component{
				{Name: "Data Grid", Slug: "data-grid"},
			},
		})
	})

	list, err := client.ListComponents(context.Background(), ComponentListParams{
		Query: "grid", Framework: "react", Page: 2, Limit: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 45, list.Total)
	require.Len(t, list.Components, 1)
}

func TestAutoDeploy_Payload(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/components/data-grid/deploy", r.URL.Path)

		var req AutoDeployRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a1b2c3d4e5f6", req.CommitSHA)
		assert.Equal(t, "Auto-deployed from commit a1b2c3d", req.Changelog)

		json.NewEncoder(w).Encode(AutoDeployResult{
			Version: domain.ComponentVersion{Version: "1.0.3"},
			JobID:   "job-7",
		})
	})

	result, err := client.AutoDeploy(context.Background(), "data-grid", AutoDeployRequest{
		CommitSHA: "a1b2c3d4e5f6",
		Changelog: "Auto-deployed from commit a1b2c3d",
	})
	require.NoError(t, err)
	assert.Equal(t, "1.0.3", result.Version.Version)
	assert.Equal(t, "job-7", result.JobID)
}

func TestLinkRepo(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/components/data-grid/link", r.URL.Path)

		var req LinkRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "acme", req.Owner)
		assert.Equal(t, "widgets", req.Repo)
		assert.Equal(t, "packages/grid", req.Path)
		assert.Equal(t, "main", req.Ref)
		assert.Equal(t, "deadbeef", req.Commit, "the pinned commit travels with the link")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"component": map[string]interface{}{
					"slug": "data-grid",
					"repoLink": map[string]interface{}{
						"owner": "acme", "repo": "widgets", "path": "packages/grid", "ref": "main",
					},
				},
				"initialVersion": map[string]interface{}{"version": "1.0.0"},
			},
		})
	})

	result, err := client.LinkRepo(context.Background(), "data-grid", LinkRequest{
		Owner: "acme", Repo: "widgets", Path: "packages/grid", Ref: "main", Commit: "deadbeef",
	})
	require.NoError(t, err)
	assert.True(t, result.Component.IsLinked())
	require.NotNil(t, result.InitialVersion)
	assert.Equal(t, "1.0.0", result.InitialVersion.Version)
}

func TestListBranchesSingleObject(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/github/branches", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"name":   "main",
				"commit": map[string]interface{}{"sha": "deadbeefcafe"},
			},
		})
	})

	branches, err := client.ListBranches(context.Background(), "acme", "widgets")
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, "main", branches[0].Name)
	assert.Equal(t, "deadbeefcafe", branches[0].Commit.SHA)
}

func TestListBranchesArray(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{"name": "main"},
				{"name": "develop"},
			},
		})
	})

	branches, err := client.ListBranches(context.Background(), "acme", "widgets")
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "develop", branches[1].Name)
}

func TestLoginAndPreviewURLs(t *testing.T) {
	client := NewClient("https://hub.example.com")

	assert.Equal(t,
		"https://hub.example.com/auth/github/login?redirect=http%3A%2F%2F127.0.0.1%3A9999%2Fauth%2Fcallback",
		client.LoginURL("http://127.0.0.1:9999/auth/callback"))

	assert.Equal(t,
		"https://hub.example.com/preview/data-grid/1.0.0",
		client.PreviewURL("data-grid", "1.0.0"))
}

package tracker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intakehq/intake/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(&Config{BaseURL: srv.URL, Token: "test-token"})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("Should reject a missing token", func(t *testing.T) {
		_, err := NewClient(&Config{})
		assert.Error(t, err)
		_, err = NewClient(nil)
		assert.Error(t, err)
	})
}

func TestClient_CreateTask(t *testing.T) {
	t.Run("Should post the data envelope with project and section membership", func(t *testing.T) {
		var captured map[string]any
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/tasks", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			writeJSON(w, `{"data":{"gid":"42","permalink_url":"https://tracker/42"}}`)
		})

		ref, err := client.CreateTask(t.Context(), &CreateTaskInput{
			Name:      "Call vendor",
			Notes:     "from intake",
			ProjectID: "p1",
			SectionID: "s1",
			DueOn:     "2026-09-01",
		})

		require.NoError(t, err)
		assert.Equal(t, core.ID("42"), ref.ID)
		assert.Equal(t, "https://tracker/42", ref.URL)

		data := captured["data"].(map[string]any)
		assert.Equal(t, "Call vendor", data["name"])
		assert.Equal(t, []any{"p1"}, data["projects"])
		assert.Equal(t, "2026-09-01", data["due_on"])
		memberships := data["memberships"].([]any)
		require.Len(t, memberships, 1)
		assert.Equal(t, "s1", memberships[0].(map[string]any)["section"])
	})

	t.Run("Should prefer due_at over due_on when both are set", func(t *testing.T) {
		var captured map[string]any
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			writeJSON(w, `{"data":{"gid":"42"}}`)
		})

		_, err := client.CreateTask(t.Context(), &CreateTaskInput{
			Name:      "Call vendor",
			ProjectID: "p1",
			DueOn:     "2026-09-01",
			DueAt:     "2026-09-01T14:00:00Z",
		})

		require.NoError(t, err)
		data := captured["data"].(map[string]any)
		assert.Equal(t, "2026-09-01T14:00:00Z", data["due_at"])
		assert.NotContains(t, data, "due_on")
	})

	t.Run("Should send subtasks with a parent and no project or section", func(t *testing.T) {
		var captured map[string]any
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			writeJSON(w, `{"data":{"gid":"77"}}`)
		})

		_, err := client.CreateTask(t.Context(), &CreateTaskInput{
			Name:      "Send recap",
			ProjectID: "p1",
			ParentID:  "parent-1",
			SectionID: "s1",
		})

		require.NoError(t, err)
		data := captured["data"].(map[string]any)
		assert.Equal(t, "parent-1", data["parent"])
		assert.NotContains(t, data, "projects")
		assert.NotContains(t, data, "memberships")
	})

	t.Run("Should surface status and body on API errors", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			writeJSON(w, `{"errors":[{"message":"not allowed"}]}`)
		})

		_, err := client.CreateTask(t.Context(), &CreateTaskInput{Name: "x", ProjectID: "p1"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
		assert.Contains(t, apiErr.Body, "not allowed")
	})
}

func TestClient_ListSections(t *testing.T) {
	t.Run("Should parse section summaries", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/projects/p1/sections", r.URL.Path)
			writeJSON(w, `{"data":[{"gid":"s1","name":"General"},{"gid":"s2","name":"Strategy"}]}`)
		})

		sections, err := client.ListSections(t.Context(), "p1")

		require.NoError(t, err)
		require.Len(t, sections, 2)
		assert.Equal(t, core.ID("s1"), sections[0].ID)
		assert.Equal(t, "Strategy", sections[1].Name)
	})
}

func TestClient_ListUsers(t *testing.T) {
	t.Run("Should fall back to the first workspace when none is given", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/workspaces":
				writeJSON(w, `{"data":[{"gid":"ws1"},{"gid":"ws2"}]}`)
			case "/workspaces/ws1/users":
				writeJSON(w, `{"data":[{"gid":"u1","name":"Janelle","email":"janelle@example.com"}]}`)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		})

		users, err := client.ListUsers(t.Context(), "")

		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "janelle@example.com", users[0].Email)
	})
}

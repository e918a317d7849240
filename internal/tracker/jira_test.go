package tracker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scrumpilot/internal/config"
	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

func testTrackerClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithHTTP(config.TrackerConfig{
		Enabled:    true,
		BaseURL:    srv.URL,
		ProjectKey: "PROJ",
		Email:      "bot@example.com",
		APIToken:   "secret-token",
	}, srv.Client(), zerolog.Nop())
}

func TestClient_FileTicket(t *testing.T) {
	t.Parallel()

	t.Run("creates issue and returns reference", func(t *testing.T) {
		t.Parallel()

		c := testTrackerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/rest/api/2/issue", r.URL.Path)

			wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("bot@example.com:secret-token"))
			assert.Equal(t, wantAuth, r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req createIssueRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "PROJ", req.Fields.Project.Key)
			assert.Equal(t, "Implement payment endpoint", req.Fields.Summary)
			assert.Equal(t, "Task", req.Fields.IssueType.Name)
			assert.Equal(t, []string{"coding"}, req.Fields.Labels)
			assert.Contains(t, req.Fields.Description, "Assignee: alice")
			assert.Contains(t, req.Fields.Description, "Estimate: 4.0h")
			require.NotNil(t, req.Fields.Priority)
			assert.Equal(t, "Medium", req.Fields.Priority.Name)

			_, _ = w.Write([]byte(`{"id":"10042","key":"PROJ-9","self":"ignored"}`))
		}))

		ref, err := c.FileTicket(context.Background(), domain.TicketRequest{
			Title:       "Implement payment endpoint",
			Description: "Add the v2 payment endpoint",
			Assignee:    "alice",
			Type:        constants.TaskTypeCoding,
			Priority:    "Medium",
			StoryPoints: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, "PROJ-9", ref.IssueKey)
		assert.Equal(t, c.baseURL+"/browse/PROJ-9", ref.IssueURL)
	})

	t.Run("non-coding work gets its label and no priority", func(t *testing.T) {
		t.Parallel()
		c := testTrackerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req createIssueRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{"non-coding"}, req.Fields.Labels)
			assert.Nil(t, req.Fields.Priority)

			_, _ = w.Write([]byte(`{"key":"PROJ-10"}`))
		}))

		ref, err := c.FileTicket(context.Background(), domain.TicketRequest{
			Title: "Review migration plan",
			Type:  constants.TaskTypeNonCoding,
		})
		require.NoError(t, err)
		assert.Equal(t, "PROJ-10", ref.IssueKey)
	})

	t.Run("error status surfaces response body", func(t *testing.T) {
		t.Parallel()
		c := testTrackerClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errorMessages":["project is required"]}`))
		}))

		_, err := c.FileTicket(context.Background(), domain.TicketRequest{Title: "x"})
		require.ErrorIs(t, err, errors.ErrTrackerCall)
		assert.Contains(t, err.Error(), "project is required")
	})

	t.Run("missing issue key is an error", func(t *testing.T) {
		t.Parallel()
		c := testTrackerClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"10042"}`))
		}))

		_, err := c.FileTicket(context.Background(), domain.TicketRequest{Title: "x"})
		require.ErrorIs(t, err, errors.ErrTrackerCall)
	})
}

func TestNewClientWithHTTP_BaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trailing slash trimmed", in: "https://acme.atlassian.net/", want: "https://acme.atlassian.net"},
		{name: "scheme added", in: "acme.atlassian.net", want: "https://acme.atlassian.net"},
		{name: "http kept", in: "http://localhost:8080", want: "http://localhost:8080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewClientWithHTTP(config.TrackerConfig{BaseURL: tt.in}, nil, zerolog.Nop())
			assert.Equal(t, tt.want, c.baseURL)
		})
	}
}

// Package tracker files tickets with an external Jira-style issue tracker.
// Filing is best-effort: the pipeline records failures and moves on, and a
// task's identity never depends on the tracker accepting it.
package tracker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scrumpilot/internal/config"
	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// defaultTimeout bounds a single tracker request.
const defaultTimeout = 30 * time.Second

// Client talks to a Jira-compatible REST API.
type Client struct {
	baseURL    string
	projectKey string
	email      string
	apiToken   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient builds a tracker client from configuration.
func NewClient(cfg config.TrackerConfig, logger zerolog.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: defaultTimeout}, logger)
}

// NewClientWithHTTP builds a tracker client with an explicit HTTP client.
func NewClientWithHTTP(cfg config.TrackerConfig, httpClient *http.Client, logger zerolog.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL != "" && !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	return &Client{
		baseURL:    baseURL,
		projectKey: cfg.ProjectKey,
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "tracker").Logger(),
	}
}

// issueFields is the create-issue payload.
type issueFields struct {
	Project     projectRef `json:"project"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	IssueType   namedRef   `json:"issuetype"`
	Labels      []string   `json:"labels,omitempty"`
	Priority    *namedRef  `json:"priority,omitempty"`
}

type projectRef struct {
	Key string `json:"key"`
}

type namedRef struct {
	Name string `json:"name"`
}

type createIssueRequest struct {
	Fields issueFields `json:"fields"`
}

type createIssueResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// FileTicket creates a tracker issue for the request and returns its
// reference. The assignee is recorded in the issue body rather than the
// tracker's assignee field, which requires account IDs we do not hold.
func (c *Client) FileTicket(ctx context.Context, req domain.TicketRequest) (domain.TicketRef, error) {
	description := req.Description
	if req.Assignee != "" {
		description = fmt.Sprintf("%s\n\nAssignee: %s", description, req.Assignee)
	}
	if req.StoryPoints > 0 {
		description = fmt.Sprintf("%s\nEstimate: %.1fh", description, req.StoryPoints)
	}

	fields := issueFields{
		Project:     projectRef{Key: c.projectKey},
		Summary:     req.Title,
		Description: description,
		IssueType:   namedRef{Name: "Task"},
		Labels:      labelsFor(req.Type),
	}
	if req.Priority != "" {
		fields.Priority = &namedRef{Name: req.Priority}
	}

	var created createIssueResponse
	if err := c.post(ctx, "issue", createIssueRequest{Fields: fields}, &created); err != nil {
		return domain.TicketRef{}, err
	}
	if created.Key == "" {
		return domain.TicketRef{}, errors.Wrap(errors.ErrTrackerCall, "tracker returned no issue key")
	}

	ref := domain.TicketRef{
		IssueKey: created.Key,
		IssueURL: fmt.Sprintf("%s/browse/%s", c.baseURL, created.Key),
	}

	c.logger.Info().
		Str("issue_key", ref.IssueKey).
		Str("summary", req.Title).
		Msg("Filed tracker issue")

	return ref, nil
}

// post sends a JSON request to the tracker's REST API and decodes the
// response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal tracker request")
	}

	url := fmt.Sprintf("%s/rest/api/2/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "build tracker request")
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.email + ":" + c.apiToken))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrTrackerCall, "request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrTrackerCall, "read tracker response")
	}
	if resp.StatusCode >= 400 {
		return errors.Wrapf(errors.ErrTrackerCall, "tracker returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.Wrap(errors.ErrTrackerCall, "decode tracker response")
		}
	}
	return nil
}

// labelsFor maps a task type to tracker labels.
func labelsFor(t constants.TaskType) []string {
	switch t {
	case constants.TaskTypeCoding:
		return []string{"coding"}
	case constants.TaskTypeNonCoding:
		return []string{"non-coding"}
	default:
		return nil
	}
}

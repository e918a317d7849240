package domain

import "github.com/mrz1836/scrumpilot/internal/constants"

// TicketRequest is the payload filed with the external issue tracker for a
// newly created task. The tracker's issue key is not the same as the task's
// ticket ID; filing is best-effort and decoupled from task identity.
type TicketRequest struct {
	// Title is the issue summary.
	Title string `json:"title"`

	// Description is the issue body.
	Description string `json:"description"`

	// Assignee is the participant name.
	Assignee string `json:"assignee"`

	// Type classifies the work for tracker labeling.
	Type constants.TaskType `json:"type"`

	// Priority is the tracker priority name (e.g., "Medium").
	Priority string `json:"priority,omitempty"`

	// StoryPoints is the estimate mapped to tracker points, when known.
	StoryPoints float64 `json:"story_points,omitempty"`
}

// TicketRef identifies a filed tracker issue.
type TicketRef struct {
	// IssueKey is the tracker's issue key (e.g., "PROJ-123").
	IssueKey string `json:"issue_key"`

	// IssueURL is the browsable issue URL.
	IssueURL string `json:"issue_url"`
}

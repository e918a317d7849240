package matcher

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/domain"
)

// titleWordLimit caps how many description words make up a generated title.
const titleWordLimit = 8

// titleCaser title-cases generated task titles.
var titleCaser = cases.Title(language.English)

// NewTaskPayload builds the fully-populated task for a CREATE decision.
// The ticket ID is assigned by the store at creation; everything else is
// derived from the candidate here, once.
func NewTaskPayload(cand domain.CandidateTask) domain.Task {
	task := domain.Task{
		Title:        DeriveTitle(cand.Description),
		Description:  cand.Description,
		Type:         cand.Type,
		Assignee:     cand.Assignee,
		IsFuturePlan: cand.IsFuturePlan,
		Status:       constants.TaskStatusToDo,
	}

	if status := deriveStatus(cand); status != "" {
		task.Status = status
	}
	if est := estimatedHours(cand); est > 0 {
		task.EstimatedTime = est
	}
	if spent := spentHours(cand); spent > 0 {
		task.TimeTaken = spent
	}
	return task
}

// DeriveTitle generates a short human label from a description: the leading
// words, title-cased, with any trailing punctuation trimmed.
func DeriveTitle(description string) string {
	words := strings.Fields(description)
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}
	title := strings.Join(words, " ")
	title = strings.TrimRight(title, ".,;:!?")
	if title == "" {
		return "Untitled Task"
	}
	return titleCaser.String(title)
}

package matcher

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/domain"
)

// completionCues map description phrases to the completed status.
var completionCues = []string{
	"completed", "finished", "done with", "is done", "have completed",
}

// progressCues map description phrases to the in-progress status.
var progressCues = []string{
	"started", "working on", "begun", "in progress", "currently", "am working",
}

// spentTimePatterns extract hours already spent from free text.
// Each pattern's first capture group is the numeric hours value.
var spentTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:spent|took)\s+(?:about\s+|around\s+)?(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`),
	regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\s+(?:spent|taken|worked)\b`),
	regexp.MustCompile(`(?i)\bcompleted\s+(?:it\s+)?in\s+(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`),
	regexp.MustCompile(`(?i)\bworked\s+(?:for\s+)?(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`),
}

// estimatePatterns extract effort estimates from free text.
var estimatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:will|might|may|could|should)?\s*take\s+(?:about\s+|around\s+)?(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`),
	regexp.MustCompile(`(?i)\b(?:estimated(?:\s+at)?|needs?|requires?)\s+(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`),
	regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\s+(?:estimated|needed|required)\b`),
}

// BuildDelta computes the merge for applying a candidate's new evidence to
// an existing task. Building is deterministic: the same candidate against
// the same task snapshot always yields the same delta, and a candidate
// carrying no new information yields an empty one.
func BuildDelta(cand domain.CandidateTask, existing domain.Task) *domain.MergeDelta {
	delta := &domain.MergeDelta{ExpectedTicketID: existing.TicketID}

	// Description: append, never overwrite. The compare is literal after
	// case/whitespace folding — repeated identical updates beyond that are
	// deliberately not deduplicated.
	if !sameText(cand.Description, existing.Description) {
		delta.AppendDescription = cand.Description
	}

	if status := deriveStatus(cand); status != "" && status != existing.Status {
		delta.Status = status
	}

	if spent := spentHours(cand); spent > 0 {
		delta.AddTimeTaken = spent
	}

	// Estimate is first-writer-wins: only propose one when the task has none.
	if existing.EstimatedTime == 0 {
		if est := estimatedHours(cand); est > 0 {
			delta.SetEstimatedTime = est
		}
	}

	return delta
}

// sameText compares two texts case- and whitespace-insensitively.
func sameText(a, b string) bool {
	fold := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return fold(a) == fold(b)
}

// deriveStatus maps a candidate to its status: an explicit non-default hint
// wins, otherwise text cues decide, otherwise no change. Completion cues
// are checked first so "spent 3 hours, completed it" lands on completed.
func deriveStatus(cand domain.CandidateTask) constants.TaskStatus {
	if cand.Status != "" && cand.Status != constants.TaskStatusToDo {
		return cand.Status
	}

	text := strings.ToLower(cand.Description)
	for _, cue := range completionCues {
		if strings.Contains(text, cue) {
			return constants.TaskStatusCompleted
		}
	}
	for _, cue := range progressCues {
		if strings.Contains(text, cue) {
			return constants.TaskStatusInProgress
		}
	}
	return ""
}

// spentHours returns the candidate's spent time: the extraction hint when
// present, otherwise the first parseable spent-time phrase.
func spentHours(cand domain.CandidateTask) float64 {
	if cand.TimeTaken > 0 {
		return cand.TimeTaken
	}
	return firstHours(spentTimePatterns, cand.Description)
}

// estimatedHours returns the candidate's estimate: the extraction hint when
// present, otherwise the first parseable estimate phrase.
func estimatedHours(cand domain.CandidateTask) float64 {
	if cand.EstimatedTime > 0 {
		return cand.EstimatedTime
	}
	return firstHours(estimatePatterns, cand.Description)
}

// firstHours runs the patterns in order and returns the first captured
// non-negative hours value, or 0 when nothing parses.
func firstHours(patterns []*regexp.Regexp, text string) float64 {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		hours, err := strconv.ParseFloat(m[1], 64)
		if err != nil || hours < 0 {
			continue
		}
		return hours
	}
	return 0
}

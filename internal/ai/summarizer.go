package ai

import (
	"context"
	"strings"

	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// summarySystemPrompt instructs the model to produce meeting notes.
const summarySystemPrompt = `You write concise meeting notes from a transcript.
Cover: decisions made, action items per person, and open questions.
Use short markdown sections. Do not invent content not in the transcript.`

// Summarizer generates meeting notes from a transcript.
type Summarizer struct {
	client *Client
}

// NewSummarizer creates a Summarizer over a model client.
func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize returns generated notes for the transcript.
func (s *Summarizer) Summarize(ctx context.Context, t *domain.Transcript) (string, error) {
	summary, err := s.client.Complete(ctx, summarySystemPrompt, t.Text())
	if err != nil {
		return "", errors.Wrapf(err, "summarize transcript %s", t.ID)
	}
	if strings.TrimSpace(summary) == "" {
		return "", errors.ErrModelEmptyResponse
	}
	return summary, nil
}

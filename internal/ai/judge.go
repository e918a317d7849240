package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mrz1836/scrumpilot/internal/domain"
)

// judgeSystemPrompt instructs the model to judge whether two task
// descriptions refer to the same work item.
const judgeSystemPrompt = `You judge whether two task descriptions refer to the
same underlying work item. Consider assignee and work type as context: the
same assignee describing similar work usually means the same item.
Return ONLY a JSON object, no surrounding text:
{"is_match": <bool>, "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}`

// JudgeContext carries the metadata passed alongside the two descriptions.
type JudgeContext struct {
	Assignee string
	TypeA    string
	TypeB    string
}

// Judge asks the chat model for a similarity verdict on two descriptions.
type Judge struct {
	client *Client
}

// NewJudge creates a Judge over a model client.
func NewJudge(client *Client) *Judge {
	return &Judge{client: client}
}

// Judge returns the model's verdict for the pair.
//
// The model is untrusted: a response that fails to parse is logged with the
// raw (truncated) text and substituted with a safe default — no match at
// confidence 0 — rather than surfaced as an error. Transport failures are
// returned as errors so the caller can fall through to the next tier.
func (j *Judge) Judge(ctx context.Context, candidateText, existingText string, jctx JudgeContext) (domain.Judgment, error) {
	prompt := fmt.Sprintf(
		"Assignee: %s\n\nTask A (%s):\n%s\n\nTask B (%s):\n%s",
		jctx.Assignee, jctx.TypeA, candidateText, jctx.TypeB, existingText,
	)

	raw, err := j.client.Complete(ctx, judgeSystemPrompt, prompt)
	if err != nil {
		return domain.Judgment{}, err
	}

	var verdict domain.Judgment
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &verdict); err != nil {
		j.client.logger.Warn().
			Str("raw_response", truncateForLog(raw)).
			Msg("judgment response failed to parse, defaulting to no-match")
		return domain.Judgment{IsMatch: false, Confidence: 0}, nil
	}

	// Clamp out-of-range confidences from an unreliable model.
	if verdict.Confidence < 0 {
		verdict.Confidence = 0
	}
	if verdict.Confidence > 1 {
		verdict.Confidence = 1
	}
	return verdict, nil
}

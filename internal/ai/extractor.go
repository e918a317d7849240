package ai

import (
	"context"
	"encoding/json"

	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// extractionSystemPrompt instructs the model to return the participant →
// task-lists mapping the pipeline consumes. The content quality of what the
// model extracts is not this package's concern; only the shape is.
const extractionSystemPrompt = `You extract action items from meeting transcripts.
Return ONLY a JSON object of this exact shape, with no surrounding text:
{
  "participants": {
    "<participant name>": {
      "coding": [
        {
          "description": "<what the task is>",
          "existing_task_id": "<ticket reference like SP-12 if the speaker mentioned one, else omit>",
          "status": "<to_do|in_progress|completed if stated, else omit>",
          "estimated_time": <hours if stated, else omit>,
          "time_taken": <hours if stated, else omit>,
          "is_future_plan": <true if aspirational rather than active work>
        }
      ],
      "non_coding": [ ... same shape ... ]
    }
  }
}
Attribute each task to the participant who owns it. Split tasks into coding
(implementation) and non_coding (reviews, docs, coordination) work.`

// Extractor turns a transcript into candidate tasks via the chat model.
type Extractor struct {
	client *Client
}

// NewExtractor creates an Extractor over a model client.
func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

// Extract asks the model for the participant → candidate mapping.
// A malformed response is a hard error for the transcript (there is nothing
// to process without it); the raw response is logged truncated.
func (e *Extractor) Extract(ctx context.Context, t *domain.Transcript) (*domain.ExtractionResult, error) {
	raw, err := e.client.Complete(ctx, extractionSystemPrompt, t.Text())
	if err != nil {
		return nil, errors.Wrap(errors.ErrExtractionFailed, err.Error())
	}

	var result domain.ExtractionResult
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &result); err != nil {
		e.client.logger.Error().
			Str("transcript_id", t.ID).
			Str("raw_response", truncateForLog(raw)).
			Msg("extraction response failed to parse")
		return nil, errors.Wrap(errors.ErrModelResponseFormat, "extraction: "+err.Error())
	}

	if result.Participants == nil {
		result.Participants = map[string]domain.CandidateLists{}
	}
	return &result, nil
}

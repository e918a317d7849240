// Package transcript fetches meeting transcripts from an HTTP provider.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scrumpilot/internal/config"
	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// defaultTimeout bounds a single provider request.
const defaultTimeout = 60 * time.Second

// Source yields the transcripts for a time window.
type Source interface {
	// FetchWindow returns the transcripts dated within [from, to).
	FetchWindow(ctx context.Context, from, to time.Time) ([]domain.Transcript, error)
}

// HTTPSource fetches transcripts from a JSON-over-HTTP meeting provider.
type HTTPSource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPSource builds a provider client from configuration.
func NewHTTPSource(cfg config.TranscriptsConfig, logger zerolog.Logger) *HTTPSource {
	return NewHTTPSourceWithHTTP(cfg, &http.Client{Timeout: defaultTimeout}, logger)
}

// NewHTTPSourceWithHTTP builds a provider client with an explicit HTTP client.
func NewHTTPSourceWithHTTP(cfg config.TranscriptsConfig, httpClient *http.Client, logger zerolog.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "transcripts").Logger(),
	}
}

// listResponse is the provider's transcript listing payload.
type listResponse struct {
	Transcripts []domain.Transcript `json:"transcripts"`
}

// FetchWindow returns the transcripts dated within [from, to).
func (s *HTTPSource) FetchWindow(ctx context.Context, from, to time.Time) ([]domain.Transcript, error) {
	q := url.Values{}
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))
	endpoint := fmt.Sprintf("%s/v1/transcripts?%s", s.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build transcripts request")
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrTranscriptSource, "request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrTranscriptSource, "read provider response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrTranscriptSource, "provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, errors.Wrap(errors.ErrTranscriptSource, "decode provider response")
	}

	// Providers are not trusted to honor the window exactly.
	out := make([]domain.Transcript, 0, len(list.Transcripts))
	for _, t := range list.Transcripts {
		if t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		out = append(out, t)
	}

	s.logger.Debug().
		Int("fetched", len(list.Transcripts)).
		Int("in_window", len(out)).
		Time("from", from).
		Time("to", to).
		Msg("Fetched transcripts")

	return out, nil
}

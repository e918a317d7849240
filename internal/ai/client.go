// Package ai provides the language-model and embedding clients for
// ScrumPilot: action-item extraction, similarity judgment, meeting-notes
// generation, and embedding generation against an OpenAI-compatible API.
//
// The models are treated as untrusted, fallible collaborators: transport
// errors retry with backoff, and malformed responses are substituted with
// safe defaults by the callers that can tolerate them.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scrumpilot/internal/config"
	"github.com/mrz1836/scrumpilot/internal/constants"
	"github.com/mrz1836/scrumpilot/internal/ctxutil"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// Client talks to an OpenAI-compatible API for chat completions and
// embeddings. Construct one at process start and pass it down; there is no
// package-level singleton.
type Client struct {
	baseURL        string
	apiKey         string
	chatModel      string
	embeddingModel string
	timeout        time.Duration
	httpClient     *http.Client
	logger         zerolog.Logger
}

// NewClient creates a model client from configuration.
func NewClient(cfg config.ModelConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultModelTimeout
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		timeout:        timeout,
		httpClient:     http.DefaultClient,
		logger:         logger.With().Str("component", "ai").Logger(),
	}
}

// NewClientWithHTTP creates a client with a custom base URL and HTTP client
// (for testing against httptest servers).
func NewClientWithHTTP(cfg config.ModelConfig, httpClient *http.Client, logger zerolog.Logger) *Client {
	c := NewClient(cfg, logger)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

// EmbeddingModel returns the configured embedding model name.
func (c *Client) EmbeddingModel() string {
	return c.embeddingModel
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Complete sends a chat completion request and returns the first choice's
// content. Transient failures retry with exponential backoff.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := []chatMessage{}
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	var resp chatResponse
	err := c.postWithRetry(ctx, "/chat/completions", chatRequest{
		Model:    c.chatModel,
		Messages: messages,
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.ErrModelEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for a text. The dimension is whatever
// the configured model returns.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var resp embeddingsResponse
	err := c.postWithRetry(ctx, "/embeddings", embeddingsRequest{
		Model: c.embeddingModel,
		Input: []string{text},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.ErrModelEmptyResponse
	}
	return resp.Data[0].Embedding, nil
}

// postWithRetry executes a JSON POST with timeout and exponential backoff
// on transient errors. Non-retryable errors return immediately.
func (c *Client) postWithRetry(ctx context.Context, path string, payload, out any) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	var lastErr error
	backoff := constants.InitialBackoff

	for attempt := 1; attempt <= constants.MaxRetryAttempts; attempt++ {
		err := c.post(ctx, path, payload, out)
		if err == nil {
			if attempt > 1 {
				c.logger.Info().Int("attempt", attempt).Str("path", path).
					Msg("model request succeeded after retry")
			}
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		lastErr = err
		if attempt < constants.MaxRetryAttempts {
			c.logger.Warn().Err(err).
				Int("attempt", attempt).
				Int("max_attempts", constants.MaxRetryAttempts).
				Dur("backoff", backoff).
				Str("path", path).
				Msg("model request failed, will retry after backoff")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= constants.BackoffMultiplier
			}
		}
	}

	return errors.Wrapf(lastErr, "%s: max retries exceeded", path)
}

// post executes one JSON POST against the API.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transientError{err: errors.Wrap(errors.ErrModelCall, err.Error())}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close after decode

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %s returned status %s", errors.ErrModelCall, path, resp.Status)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return &transientError{err: err}
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrModelResponseFormat, err.Error())
	}
	return nil
}

// transientError marks an error as retryable.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// isRetryable reports whether an error is transient (network failure,
// rate limit, server error).
func isRetryable(err error) bool {
	var te *transientError
	return stderrors.As(err, &te)
}

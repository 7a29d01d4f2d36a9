package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/log"
	"github.com/nao1215/prodscout/internal/metrics"
)

// maxResponseSize bounds the body read from the API.
const maxResponseSize = 10 * 1024 * 1024

// Client calls an OpenAI compatible /chat/completions endpoint.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxRetries  int
	backoffBase time.Duration
	maxBackoff  time.Duration
	sem         *semaphore.Weighted
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets the API root, e.g. https://api.openai.com/v1.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithModel sets the default model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxRetries sets how often server errors are retried.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the retry backoff for server errors.
func WithBackoff(base, limit time.Duration) ClientOption {
	return func(c *Client) {
		if base > 0 && limit >= base {
			c.backoffBase = base
			c.maxBackoff = limit
		}
	}
}

// WithMaxConcurrency bounds in-flight requests.
func WithMaxConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRequestsPerSecond paces requests. Zero disables pacing.
func WithRequestsPerSecond(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithTimeout sets the HTTP timeout of one call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client with the defaults of config.NewConfig.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: config.DefaultModelTimeout},
		baseURL:     config.DefaultModelBaseURL,
		model:       config.DefaultModelName,
		maxRetries:  config.DefaultModelMaxRetries,
		backoffBase: time.Second,
		maxBackoff:  10 * time.Second,
		sem:         semaphore.NewWeighted(config.DefaultModelMaxConcurrency),
		logger:      log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a Client from the model configuration.
func NewClientFromConfig(cfg config.ModelConfig, logger *slog.Logger) *Client {
	return NewClient(
		WithBaseURL(cfg.BaseURL),
		WithAPIKey(cfg.APIKey),
		WithModel(cfg.Name),
		WithMaxRetries(cfg.MaxRetries),
		WithMaxConcurrency(cfg.MaxConcurrency),
		WithRequestsPerSecond(cfg.RequestsPerSecond),
		WithTimeout(cfg.Timeout),
		WithLogger(logger),
	)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string          `json:"message"`
		Type    string          `json:"type"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

// Generate sends prompt as a single user message and returns the text of
// the first choice.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}
	maxRetries := c.maxRetries
	if opts.MaxRetries > 0 {
		maxRetries = opts.MaxRetries
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.backoff(attempt - 1)
			c.logger.Debug("retrying generation", "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := c.do(ctx, model, body)
		if err == nil {
			metrics.LLMRequests.WithLabelValues("success").Inc()
			return text, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}

	metrics.LLMRequests.WithLabelValues(resultLabel(lastErr)).Inc()
	return "", lastErr
}

func (c *Client) do(ctx context.Context, model string, body []byte) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp.StatusCode, data)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(NormalizeContent(parsed.Choices[0].Message.Content))
	if text == "" {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug("generation completed", "model", model, "duration", time.Since(start))
	return text, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.backoffBase << attempt
	if d <= 0 || d > c.maxBackoff {
		return c.maxBackoff
	}
	return d
}

func parseAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}

	var parsed errorResponse
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		apiErr.Type = parsed.Error.Type
		apiErr.Code = rawCode(parsed.Error.Code)
	}
	return apiErr
}

// rawCode accepts codes sent as JSON strings or numbers.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// retryable reports whether the client should resend the request itself.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return !errors.Is(err, ErrEmptyCompletion) && !errors.Is(err, context.Canceled)
}

func resultLabel(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return "rate_limited"
		}
		return "api_error"
	}
	return "error"
}

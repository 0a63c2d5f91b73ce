package nutrisense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 1500 * time.Millisecond

	analyzeAttempts = 3
	chatAttempts    = 2
)

// Config holds client configuration.
type Config struct {
	// BaseURL is the server address, e.g. "http://localhost:8080". Required.
	BaseURL string

	// HTTPClient lets callers supply their own transport. Optional.
	HTTPClient *http.Client

	// Timeout applies per request when HTTPClient is not set. Defaults to 30s.
	Timeout time.Duration

	// RetryBaseDelay is the first retry pause; later pauses grow linearly.
	// Defaults to 1.5s.
	RetryBaseDelay time.Duration
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("nutrisense: BaseURL is required")
	}
	return nil
}

// Client talks to a NutriSense server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
}

// NewClient creates a client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	retryDelay := cfg.RetryBaseDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		retryDelay: retryDelay,
	}, nil
}

// Analyze submits ingredients or a label image for analysis. Transient
// failures are retried up to three attempts.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	return withRetry(ctx, analyzeAttempts, c.retryDelay, func() (*Analysis, error) {
		var result Analysis
		if err := c.post(ctx, "/api/analyze", req, &result); err != nil {
			return nil, err
		}
		return &result, nil
	})
}

// Chat asks a follow-up question about a prior analysis. Transient
// failures are retried once.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	return withRetry(ctx, chatAttempts, c.retryDelay, func() (string, error) {
		var result chatResponse
		if err := c.post(ctx, "/api/chat", req, &result); err != nil {
			return "", err
		}
		return result.Response, nil
	})
}

// Transcribe converts base64-encoded audio of spoken ingredients to text.
func (c *Client) Transcribe(ctx context.Context, audioBase64 string) (string, error) {
	body := map[string]string{"audioBase64": audioBase64}
	var result transcribeResponse
	if err := c.post(ctx, "/api/transcribe", body, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// Share stores an analysis server-side and returns its share code.
func (c *Client) Share(ctx context.Context, record *Analysis) (string, error) {
	var result shareResponse
	if err := c.post(ctx, "/api/share", record, &result); err != nil {
		return "", err
	}
	return result.ShareCode, nil
}

// GetShared fetches a previously shared analysis by its code.
func (c *Client) GetShared(ctx context.Context, code string) (*Analysis, error) {
	var result Analysis
	if err := c.get(ctx, "/api/share/"+code, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("nutrisense: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("nutrisense: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("nutrisense: build request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nutrisense: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("nutrisense: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("nutrisense: decode response: %w", err)
	}
	return nil
}

func apiError(status int, data []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return &Error{StatusCode: status, Message: body.Error}
	}
	return &Error{StatusCode: status, Message: http.StatusText(status)}
}

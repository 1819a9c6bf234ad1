package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/pkg/config"
)

const (
	maxNewTokens = 512
	temperature  = 0.7
)

// StatusError carries a non-2xx response from the inference API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference api status %d: %s", e.StatusCode, e.Body)
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
	DoSample       bool    `json:"do_sample"`
}

// HuggingFaceClient calls the Hugging Face Inference API.
type HuggingFaceClient struct {
	baseURL    string
	model      string
	apiKey     string
	retryDelay time.Duration
	http       *http.Client
	logger     *zap.Logger
}

// New returns a live client when an API key is configured and Disabled otherwise.
func New(cfg config.TextGenConfig, logger *zap.Logger) Generator {
	if !cfg.Enabled() {
		return Disabled{}
	}
	return NewHuggingFaceClient(cfg, logger)
}

// NewHuggingFaceClient constructs the client. Timeout bounds every attempt.
func NewHuggingFaceClient(cfg config.TextGenConfig, logger *zap.Logger) *HuggingFaceClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	return &HuggingFaceClient{
		baseURL:    baseURL,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		retryDelay: cfg.RetryDelay,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Model implements Generator.
func (c *HuggingFaceClient) Model() string { return c.model }

// Available implements Generator.
func (c *HuggingFaceClient) Available() bool { return true }

// Generate posts the prompt and returns the generated text with any echoed prompt removed.
// A 503 (model loading) is retried once after the configured delay.
func (c *HuggingFaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(inferenceRequest{
		Inputs: prompt,
		Parameters: inferenceParameters{
			MaxNewTokens:   maxNewTokens,
			Temperature:    temperature,
			ReturnFullText: false,
			DoSample:       true,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.post(ctx, payload)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusServiceUnavailable {
		c.logger.Warn("text generation backend unavailable, retrying once", zap.String("model", c.model), zap.Duration("delay", c.retryDelay))
		timer := time.NewTimer(c.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		body, err = c.post(ctx, payload)
	}
	if err != nil {
		return "", err
	}

	text, err := extractGeneratedText(body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.TrimPrefix(text, prompt)), nil
}

func (c *HuggingFaceClient) post(ctx context.Context, payload []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call inference api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read inference response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// extractGeneratedText accepts the list form [{"generated_text": ...}] and the object form
// {"generated_text"|"text"|"output"|"response": ...}.
func extractGeneratedText(body []byte) (string, error) {
	var list []map[string]any
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) > 0 {
			if text, ok := list[0]["generated_text"].(string); ok {
				return text, nil
			}
		}
		return "", fmt.Errorf("malformed inference response: %s", truncate(body))
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", fmt.Errorf("malformed inference response: %w", err)
	}
	for _, key := range []string{"generated_text", "text", "output", "response"} {
		if text, ok := obj[key].(string); ok {
			return text, nil
		}
	}
	return "", fmt.Errorf("malformed inference response: %s", truncate(body))
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

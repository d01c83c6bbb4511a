package ai

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

// OllamaConfig points at an Ollama /api/generate endpoint.
type OllamaConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// OllamaClient implements Completer against a local Ollama server.
type OllamaClient struct {
	httpClient *http.Client
	url        string
	model      string
}

// NewOllamaClient returns ErrDisabled when no endpoint is configured.
func NewOllamaClient(cfg OllamaConfig) (*OllamaClient, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, ErrDisabled
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "qwen3:4b-instruct-2507-q4_K_M"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		model:      model,
	}, nil
}

// Enabled reports whether the client has an endpoint.
func (c *OllamaClient) Enabled() bool {
	return c != nil && c.url != ""
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Complete issues a non-streaming generate request.
func (c *OllamaClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	payload := ollamaRequest{Model: c.model, Prompt: prompt}
	options := map[string]any{}
	if opts.Temperature > 0 {
		options["temperature"] = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	if len(options) > 0 {
		payload.Options = options
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{Backend: "ollama", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var decoded ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	text := strings.TrimSpace(decoded.Response)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	anthropicDefaultModel    = "claude-sonnet-4-5-20250929"
	anthropicDefaultEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion         = "2023-06-01"
)

// #region anthropic
// AnthropicAdapter speaks the Anthropic messages API directly over HTTP.
type AnthropicAdapter struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewAnthropicAdapter builds an adapter for the given key and model. An empty
// model uses the default; a missing key fails at Generate time.
func NewAnthropicAdapter(apiKey, model string) *AnthropicAdapter {
	if model == "" {
		model = anthropicDefaultModel
	}
	return &AnthropicAdapter{
		apiKey:   apiKey,
		model:    model,
		endpoint: anthropicDefaultEndpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

// NewAnthropicAdapterWithEndpoint overrides the endpoint. Used for testing
// against a stub server.
func NewAnthropicAdapterWithEndpoint(apiKey, model, endpoint string) *AnthropicAdapter {
	a := NewAnthropicAdapter(apiKey, model)
	a.endpoint = endpoint
	return a
}

func (a *AnthropicAdapter) Name() string  { return "anthropic" }
func (a *AnthropicAdapter) Model() string { return a.model }

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Generate sends one messages request.
func (a *AnthropicAdapter) Generate(ctx context.Context, req Request) (Result, error) {
	if a.apiKey == "" {
		return Result{}, &GenerationError{Kind: KindMissingKey, Detail: "ANTHROPIC_API_KEY is not set"}
	}
	ctx, cancel := withDeadline(ctx)
	defer cancel()

	body, err := json.Marshal(anthropicRequest{
		Model:       a.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return Result{}, &GenerationError{Kind: KindParse, Detail: "encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, &GenerationError{Kind: KindNetwork, Detail: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return Result{}, &GenerationError{Kind: KindNetwork, Detail: "anthropic messages call", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &GenerationError{Kind: KindNetwork, Detail: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &GenerationError{
			Kind:   KindAPI,
			Detail: fmt.Sprintf("anthropic API status %d", resp.StatusCode),
		}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, &GenerationError{Kind: KindParse, Detail: "decode response", Err: err}
	}

	var text string
	for _, item := range parsed.Content {
		if item.Type == "text" {
			text += item.Text
		}
	}

	model := parsed.Model
	if model == "" {
		model = a.model
	}
	result := Result{Text: text, Model: model}
	if parsed.Usage != nil {
		result.Usage = &Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		}
	}
	return result, nil
}
// #endregion anthropic

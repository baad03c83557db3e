// Package llm defines the adapter contract the generation pipeline consumes
// and the concrete adapters that speak to LLM backends.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// defaultTimeout bounds every upstream call; the adapter owns its deadline.
const defaultTimeout = 30 * time.Second

// GenerationError kinds.
const (
	KindMissingKey = "missing_key"
	KindAPI        = "api"
	KindNetwork    = "network"
	KindParse      = "parse"
)

// #region types
// Request is one generation call.
type Request struct {
	Prompt       string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// Usage reports token accounting when the backend provides it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is the response from a generation call.
type Result struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Usage *Usage `json:"usage"`
}
// #endregion types

// #region adapter-interface
// Adapter abstracts an LLM backend. Implementations enforce their own
// deadline and fail with *GenerationError so callers can distinguish
// generation failures from plain I/O errors.
type Adapter interface {
	Generate(ctx context.Context, req Request) (Result, error)
	Name() string
	Model() string
}
// #endregion adapter-interface

// #region generation-error
// GenerationError is the typed failure of an upstream generation call.
type GenerationError struct {
	Kind   string
	Detail string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation %s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("generation %s: %s", e.Kind, e.Detail)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// AsGenerationError unwraps err into a *GenerationError if one is present.
func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
// #endregion generation-error

// #region factory
// New builds an adapter by name. "auto" resolves from the available API keys.
// model may be empty to use the adapter default.
func New(name, model string) (Adapter, error) {
	if name == "auto" || name == "" {
		name = ResolveAuto()
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dummy", "test":
		return NewDummyAdapter(""), nil
	case "openai", "gpt":
		return NewOpenAIAdapter(os.Getenv("OPENAI_API_KEY"), model), nil
	case "claude", "anthropic":
		return NewAnthropicAdapter(os.Getenv("ANTHROPIC_API_KEY"), model), nil
	default:
		return nil, fmt.Errorf("unknown adapter %q", name)
	}
}

// ResolveAuto picks an adapter from the environment: Anthropic first, then
// OpenAI, else the dummy.
func ResolveAuto() string {
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return "anthropic"
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		return "openai"
	}
	return "dummy"
}
// #endregion factory

// withDeadline attaches the adapter default timeout unless the caller
// already set one.
func withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

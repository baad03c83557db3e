package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const openAIDefaultModel = "gpt-4o"

// #region openai
// OpenAIAdapter speaks the OpenAI chat-completions API.
type OpenAIAdapter struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAIAdapter builds an adapter for the given key and model. An empty
// model uses the default; a missing key fails at Generate time with a typed
// error rather than at construction.
func NewOpenAIAdapter(apiKey, model string) *OpenAIAdapter {
	if model == "" {
		model = openAIDefaultModel
	}
	a := &OpenAIAdapter{apiKey: apiKey, model: model}
	if apiKey != "" {
		a.client = openai.NewClient(apiKey)
	}
	return a
}

// NewOpenAIAdapterWithClient injects a preconfigured client. Used for testing
// against a stub server.
func NewOpenAIAdapterWithClient(client *openai.Client, model string) *OpenAIAdapter {
	if model == "" {
		model = openAIDefaultModel
	}
	return &OpenAIAdapter{client: client, apiKey: "injected", model: model}
}

func (a *OpenAIAdapter) Name() string  { return "openai" }
func (a *OpenAIAdapter) Model() string { return a.model }

// Generate sends one chat completion request.
func (a *OpenAIAdapter) Generate(ctx context.Context, req Request) (Result, error) {
	if a.client == nil {
		return Result{}, &GenerationError{Kind: KindMissingKey, Detail: "OPENAI_API_KEY is not set"}
	}
	ctx, cancel := withDeadline(ctx)
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return Result{}, &GenerationError{Kind: KindAPI, Detail: "openai chat completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return Result{}, &GenerationError{Kind: KindParse, Detail: "openai returned no choices"}
	}

	model := resp.Model
	if model == "" {
		model = a.model
	}
	return Result{
		Text:  resp.Choices[0].Message.Content,
		Model: model,
		Usage: &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
// #endregion openai

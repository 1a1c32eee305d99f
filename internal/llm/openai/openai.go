package openai

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"github.com/vbonduro/cookitup/internal/llm"
)

const (
	providerName = "openai"
	DefaultModel = "gpt-4-turbo-preview"
)

type Completer struct {
	client *openai.Client
	model  string
}

// New builds a Completer. An empty baseURL uses the public API.
func New(apiKey, model, baseURL string) *Completer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Completer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *Completer) Name() string { return providerName }

func (c *Completer) Complete(ctx context.Context, req llm.Request) (string, error) {
	creq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", wrapError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", &llm.Error{Provider: providerName, Message: "no completion choices returned"}
	}
	return resp.Choices[0].Message.Content, nil
}

func wrapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &llm.Error{Provider: providerName, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &llm.Error{Provider: providerName, StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error(), Err: err}
	}

	return &llm.Error{Provider: providerName, Message: err.Error(), Err: err}
}

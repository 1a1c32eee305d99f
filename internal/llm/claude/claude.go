package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/cookitup/internal/llm"
)

const (
	providerName = "claude"
	DefaultModel = "claude-3-5-sonnet-latest"

	// Three full recipes with ingredient lists and steps fit comfortably.
	defaultMaxTokens = 2048
)

type Completer struct {
	client *anthropic.Client
	model  string
}

// New builds a Completer. An empty baseURL uses the public Messages API.
func New(apiKey, model, baseURL string) *Completer {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultModel
	}
	return &Completer{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (c *Completer) Name() string { return providerName }

// Complete sends one Messages API call. The Messages API has no JSON mode, so
// JSON requests prefill the assistant turn with "{" and the brace is put back
// on the returned text.
func (c *Completer) Complete(ctx context.Context, req llm.Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := req.Temperature

	messages := []anthropic.Message{anthropic.NewUserTextMessage(req.User)}
	if req.JSON {
		messages = append(messages, anthropic.NewAssistantTextMessage("{"))
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      req.System,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", wrapError(ctx, err)
	}

	text := resp.GetFirstContentText()
	if strings.TrimSpace(text) == "" {
		return "", &llm.Error{Provider: providerName, Message: "response contained no text content"}
	}
	if req.JSON && !strings.HasPrefix(strings.TrimSpace(text), "{") {
		text = "{" + text
	}
	return text, nil
}

func wrapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return &llm.Error{Provider: providerName, StatusCode: apiStatus(err, apiErr), Message: apiErr.Message, Err: err}
	}

	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return &llm.Error{Provider: providerName, StatusCode: reqErr.StatusCode, Message: reqErr.Error(), Err: err}
	}

	return &llm.Error{Provider: providerName, Message: err.Error(), Err: err}
}

// apiStatus recovers the HTTP status of an API error. The client reports it
// only in the wrapping message ("error, status code: 429, message: ..."), so
// the error type is the fallback.
func apiStatus(err error, apiErr *anthropic.APIError) int {
	var code int
	if _, scanErr := fmt.Sscanf(err.Error(), "error, status code: %d", &code); scanErr == nil && code > 0 {
		return code
	}
	switch apiErr.Type {
	case anthropic.ErrTypeInvalidRequest:
		return http.StatusBadRequest
	case anthropic.ErrTypeAuthentication:
		return http.StatusUnauthorized
	case anthropic.ErrTypePermission:
		return http.StatusForbidden
	case anthropic.ErrTypeNotFound:
		return http.StatusNotFound
	case anthropic.ErrTypeTooLarge:
		return http.StatusRequestEntityTooLarge
	case anthropic.ErrTypeRateLimit:
		return http.StatusTooManyRequests
	case anthropic.ErrTypeApi:
		return http.StatusInternalServerError
	case anthropic.ErrTypeOverloaded:
		return 529
	}
	return 0
}

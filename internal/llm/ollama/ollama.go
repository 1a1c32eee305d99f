package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vbonduro/cookitup/internal/llm"
)

const providerName = "ollama"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Format   string         `json:"format,omitempty"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error"`
}

type Completer struct {
	host   string
	model  string
	client *http.Client
}

func New(host, model string) *Completer {
	return &Completer{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{},
	}
}

func (c *Completer) Name() string { return providerName }

func (c *Completer) Complete(ctx context.Context, req llm.Request) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Stream:  false,
		Options: map[string]any{"temperature": req.Temperature},
	}
	if req.JSON {
		body.Format = "json"
	}
	if req.MaxTokens > 0 {
		body.Options["num_predict"] = req.MaxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &llm.Error{Provider: providerName, Message: err.Error(), Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(errBody))
		var parsed chatResponse
		if json.Unmarshal(errBody, &parsed) == nil && parsed.Error != "" {
			msg = parsed.Error
		}
		return "", &llm.Error{Provider: providerName, StatusCode: resp.StatusCode, Message: msg}
	}

	var respBody chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &llm.Error{Provider: providerName, Message: "failed to decode response", Err: err}
	}

	if strings.TrimSpace(respBody.Message.Content) == "" {
		return "", &llm.Error{Provider: providerName, Message: "response contained no content"}
	}
	return respBody.Message.Content, nil
}

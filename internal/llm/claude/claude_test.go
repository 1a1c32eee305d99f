package claude

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/cookitup/internal/llm"
)

type capturedRequest struct {
	Model       string   `json:"model"`
	System      string   `json:"system"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func messageBody(text string) map[string]any {
	return map[string]any{
		"id":          "msg_01",
		"type":        "message",
		"role":        "assistant",
		"model":       DefaultModel,
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 20},
	}
}

func TestComplete(t *testing.T) {
	var got capturedRequest
	var gotKey, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageBody("Here is a pantry summary."))
	}))
	defer server.Close()

	c := New("sk-ant-test", "claude-opus-4-6", server.URL)
	text, err := c.Complete(context.Background(), llm.Request{
		System:      "be a chef",
		User:        "Milk (1 available)",
		Temperature: 0.7,
	})

	require.NoError(t, err)
	assert.Equal(t, "Here is a pantry summary.", text)
	assert.True(t, strings.HasSuffix(gotPath, "/messages"))
	assert.Equal(t, "sk-ant-test", gotKey)
	assert.Equal(t, "claude-opus-4-6", got.Model)
	assert.Equal(t, "be a chef", got.System)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.7, *got.Temperature, 0.001)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.Len(t, got.Messages[0].Content, 1)
	assert.Equal(t, "Milk (1 available)", got.Messages[0].Content[0].Text)
}

func TestCompleteJSONPrefill(t *testing.T) {
	var got capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageBody(`"recipes":[]}`))
	}))
	defer server.Close()

	c := New("sk-ant-test", "", server.URL)
	text, err := c.Complete(context.Background(), llm.Request{User: "hi", JSON: true})

	require.NoError(t, err)
	assert.Equal(t, `{"recipes":[]}`, text)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "{", got.Messages[1].Content[0].Text)
	assert.Equal(t, DefaultModel, got.Model)
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"rate limit exceeded"}}`))
	}))
	defer server.Close()

	c := New("sk-ant-test", "", server.URL)
	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "claude", lerr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, lerr.StatusCode)
	assert.Equal(t, "rate limit exceeded", lerr.Message)
}

func TestCompleteAuthErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	c := New("sk-ant-bad", "", server.URL)
	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, http.StatusUnauthorized, lerr.StatusCode)
	assert.Equal(t, "invalid x-api-key", lerr.Message)
}

func TestAPIStatusFromType(t *testing.T) {
	tests := []struct {
		typ  anthropic.ErrType
		want int
	}{
		{anthropic.ErrTypeAuthentication, http.StatusUnauthorized},
		{anthropic.ErrTypeRateLimit, http.StatusTooManyRequests},
		{anthropic.ErrTypeOverloaded, 529},
		{"something_new", 0},
	}
	for _, tt := range tests {
		apiErr := &anthropic.APIError{Type: tt.typ, Message: "x"}
		assert.Equal(t, tt.want, apiStatus(apiErr, apiErr), string(tt.typ))
	}
}

func TestCompleteUnparseableError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	c := New("sk-ant-test", "", server.URL)
	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, http.StatusBadGateway, lerr.StatusCode)
}

func TestCompleteEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageBody("  "))
	}))
	defer server.Close()

	c := New("sk-ant-test", "", server.URL)
	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, lerr.Message, "no text")
}

func TestCompleteCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	c := New("sk-ant-test", "", server.URL)
	_, err := c.Complete(ctx, llm.Request{User: "hi"})
	assert.True(t, errors.Is(err, context.Canceled))
}

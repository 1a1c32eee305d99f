package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/cookitup/internal/llm"
)

type capturedRequest struct {
	Model          string  `json:"model"`
	Temperature    float32 `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   DefaultModel,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	}
}

func TestComplete(t *testing.T) {
	var got capturedRequest
	var gotAuth, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody(`{"recipes":[]}`))
	}))
	defer server.Close()

	c := New("sk-test", "", server.URL+"/v1")
	text, err := c.Complete(context.Background(), llm.Request{
		System:      "be a chef",
		User:        "Milk (1 available)",
		JSON:        true,
		Temperature: 0.7,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"recipes":[]}`, text)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, DefaultModel, got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be a chef", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Milk (1 available)", got.Messages[1].Content)
}

func TestCompleteWithoutJSONMode(t *testing.T) {
	var got capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody("hello"))
	}))
	defer server.Close()

	c := New("sk-test", "gpt-4o-mini", server.URL+"/v1")
	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})
	require.NoError(t, err)
	assert.Nil(t, got.ResponseFormat)
	assert.Equal(t, "gpt-4o-mini", got.Model)
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	c := New("sk-test", "", server.URL+"/v1")
	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "openai", lerr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, lerr.StatusCode)
	assert.Equal(t, "Rate limit reached", lerr.Message)
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	c := New("sk-test", "", server.URL+"/v1")
	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, lerr.Message, "no completion")
}

func TestCompleteNetworkError(t *testing.T) {
	c := New("sk-test", "", "http://127.0.0.1:1/v1")
	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "openai", lerr.Provider)
}

func TestCompleteCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New("sk-test", "", server.URL+"/v1")
	_, err := c.Complete(ctx, llm.Request{User: "hi"})

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	var lerr *llm.Error
	assert.False(t, errors.As(err, &lerr))
}

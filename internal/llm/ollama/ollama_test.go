package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/cookitup/internal/llm"
)

func TestOllamaComplete(t *testing.T) {
	var got chatRequest
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)

		resp := map[string]interface{}{
			"model":   got.Model,
			"message": map[string]string{"role": "assistant", "content": `{"recipes":[]}`},
			"done":    true,
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	c := New(server.URL+"/", "llama3.1")
	text, err := c.Complete(context.Background(), llm.Request{
		System:      "be a chef",
		User:        "Rice (2 available)",
		JSON:        true,
		Temperature: 0.7,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"recipes":[]}`, text)
	assert.Equal(t, "/api/chat", gotPath)
	assert.Equal(t, "llama3.1", got.Model)
	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "Rice (2 available)", got.Messages[1].Content)
	assert.InDelta(t, 0.7, got.Options["temperature"], 0.001)
}

func TestOllamaCompleteNetworkError(t *testing.T) {
	c := New("http://localhost:99999", "llama3.1")

	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "ollama", lerr.Provider)
}

func TestOllamaCompleteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"llama3.1\" not found, try pulling it first"}`))
	}))
	defer server.Close()

	c := New(server.URL, "llama3.1")
	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, http.StatusNotFound, lerr.StatusCode)
	assert.Contains(t, lerr.Message, "not found")
}

func TestOllamaCompleteEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":""},"done":true}`))
	}))
	defer server.Close()

	c := New(server.URL, "llama3.1")
	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, lerr.Message, "no content")
}

func TestOllamaCompleteInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := New(server.URL, "llama3.1")
	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
}

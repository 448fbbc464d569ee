package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
			flusher.Flush()
		}
	}))
}

func TestOpenAIAdapter_StreamCompletion(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"choices":[{"delta":{"content":"Hello"}}]}`,
		`data: {"choices":[{"delta":{"content":", world"}}]}`,
		`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		`data: {"choices":[],"usage":{"prompt_tokens":5,"completion_tokens":3,"total_tokens":8}}`,
		`data: [DONE]`,
	})
	defer server.Close()

	adapter := OpenAIAdapter{}
	chunks, err := adapter.StreamCompletion(context.Background(), EndpointConfig{Endpoint: server.URL, APIKey: "test-key"}, CompletionRequest{Model: "gpt-4"})
	require.NoError(t, err)

	var tokens []string
	var finishReason string
	var usage streamChunkUsage
	for c := range chunks {
		switch c.Kind {
		case ChunkKindToken:
			tokens = append(tokens, c.Text)
		case ChunkKindFinishReason:
			finishReason = c.FinishReason
		case ChunkKindUsage:
			usage = streamChunkUsage{PromptTokens: c.PromptTokens, CompletionTokens: c.CompletionTokens, TotalTokens: c.TotalTokens}
		case ChunkKindError:
			t.Fatalf("unexpected error chunk: %v", c.Err)
		}
	}

	assert.Equal(t, []string{"Hello", ", world"}, tokens)
	assert.Equal(t, "stop", finishReason)
	assert.Equal(t, 8, usage.TotalTokens)
}

func TestOpenAIAdapter_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	adapter := OpenAIAdapter{}
	_, err := adapter.StreamCompletion(context.Background(), EndpointConfig{Endpoint: server.URL, APIKey: "test-key"}, CompletionRequest{Model: "gpt-4"})
	require.Error(t, err)

	var provErr *Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.StatusCode)
	assert.True(t, provErr.Retryable())
}

func TestOpenAIAdapter_MalformedChunk(t *testing.T) {
	server := sseServer(t, []string{`data: {not valid json`})
	defer server.Close()

	adapter := OpenAIAdapter{}
	chunks, err := adapter.StreamCompletion(context.Background(), EndpointConfig{Endpoint: server.URL, APIKey: "test-key"}, CompletionRequest{Model: "gpt-4"})
	require.NoError(t, err)

	select {
	case c := <-chunks:
		assert.Equal(t, ChunkKindError, c.Kind)
		require.Error(t, c.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error chunk")
	}
}

package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// chatCompletionMessage mirrors the OpenAI-compatible wire message.
type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequestBody is the shared OpenAI-compatible request
// shape. PresencePenalty/FrequencyPenalty are omitted for dialects
// that don't accept them (xAI) by leaving the field nil via pointer.
type chatCompletionRequestBody struct {
	Model            string                  `json:"model"`
	Messages         []chatCompletionMessage `json:"messages"`
	Temperature      float64                 `json:"temperature,omitempty"`
	MaxTokens        int                     `json:"max_tokens,omitempty"`
	TopP             float64                 `json:"top_p,omitempty"`
	PresencePenalty  *float64                `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64                `json:"frequency_penalty,omitempty"`
	Stream           bool                    `json:"stream"`
}

type streamChunkDelta struct {
	Content string `json:"content"`
}

type streamChunkChoice struct {
	Delta        streamChunkDelta `json:"delta"`
	FinishReason *string          `json:"finish_reason"`
}

type streamChunkUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type streamChunk struct {
	Choices []streamChunkChoice `json:"choices"`
	Usage   *streamChunkUsage   `json:"usage"`
}

// buildRequestBody converts the provider-agnostic request into the
// shared OpenAI-compatible JSON body. includePenalties is false for
// the xAI dialect, which rejects presence/frequency penalty fields.
func buildRequestBody(req CompletionRequest, includePenalties bool) chatCompletionRequestBody {
	messages := make([]chatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, chatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	body := chatCompletionRequestBody{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxOutputTokensOrDefault(),
		TopP:        req.TopP,
		Stream:      true,
	}
	if includePenalties {
		body.PresencePenalty = &req.PresencePenalty
		body.FrequencyPenalty = &req.FrequencyPenalty
	}
	return body
}

// MaxOutputTokensOrDefault exists so zero-valued requests in tests
// don't send max_tokens: 0, which several providers reject outright.
func (r CompletionRequest) MaxOutputTokensOrDefault() int {
	if r.MaxTokens <= 0 {
		return 1024
	}
	return r.MaxTokens
}

// streamSSE does the HTTP round trip and fans the OpenAI-compatible
// SSE body out onto a ChunkEvent channel. Shared by every adapter
// dialect; they differ only in endpoint, headers, and penalty fields.
func streamSSE(ctx context.Context, client *http.Client, url string, body chatCompletionRequestBody) (<-chan ChunkEvent, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &Error{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	out := make(chan ChunkEvent, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return
			}
			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				select {
				case out <- ChunkEvent{Kind: ChunkKindError, Err: fmt.Errorf("malformed stream chunk: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			if chunk.Usage != nil {
				select {
				case out <- ChunkEvent{Kind: ChunkKindUsage, PromptTokens: chunk.Usage.PromptTokens, CompletionTokens: chunk.Usage.CompletionTokens, TotalTokens: chunk.Usage.TotalTokens}:
				case <-ctx.Done():
					return
				}
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content != "" {
					select {
					case out <- ChunkEvent{Kind: ChunkKindToken, Text: choice.Delta.Content}:
					case <-ctx.Done():
						return
					}
				}
				if choice.FinishReason != nil {
					select {
					case out <- ChunkEvent{Kind: ChunkKindFinishReason, FinishReason: *choice.FinishReason}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case out <- ChunkEvent{Kind: ChunkKindError, Err: fmt.Errorf("read stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

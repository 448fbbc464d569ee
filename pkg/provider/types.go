// Package provider wraps heterogeneous LLM chat-completions APIs
// behind one streaming contract (spec ยง4.2).
package provider

import "context"

// ChatMessage is one turn in a completion request.
type ChatMessage struct {
	Role    string
	Content string
}

// CompletionRequest is the provider-agnostic request shape every
// adapter translates into its own wire dialect.
type CompletionRequest struct {
	Model            string
	Messages         []ChatMessage
	Temperature      float64
	MaxTokens        int
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

// ChunkKind discriminates the sum type carried by ChunkEvent.
type ChunkKind int

const (
	ChunkKindToken ChunkKind = iota
	ChunkKindFinishReason
	ChunkKindUsage
	ChunkKindError
)

// ChunkEvent is one item streamed back from a provider call.
type ChunkEvent struct {
	Kind             ChunkKind
	Text             string // ChunkKindToken
	FinishReason     string // ChunkKindFinishReason
	PromptTokens     int    // ChunkKindUsage
	CompletionTokens int    // ChunkKindUsage
	TotalTokens      int    // ChunkKindUsage
	Err              error  // ChunkKindError
}

// EndpointConfig is everything an adapter needs to reach one endpoint.
type EndpointConfig struct {
	Endpoint string
	APIKey   string
}

// Adapter streams one chat completion. The returned channel is closed
// exactly once, whether the stream finished normally or failed.
type Adapter interface {
	StreamCompletion(ctx context.Context, cfg EndpointConfig, req CompletionRequest) (<-chan ChunkEvent, error)
}

package provider

import "context"

// OpenAIAdapter speaks the OpenAI chat-completions dialect: Bearer
// auth, penalty fields included.
type OpenAIAdapter struct{}

func (OpenAIAdapter) StreamCompletion(ctx context.Context, cfg EndpointConfig, req CompletionRequest) (<-chan ChunkEvent, error) {
	client := newBearerClient(cfg.APIKey)
	body := buildRequestBody(req, true)
	return streamSSE(ctx, client, cfg.Endpoint, body)
}

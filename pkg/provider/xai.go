package provider

import "context"

// DefaultXAIEndpoint is used when a ConfiguredModel omits one.
const DefaultXAIEndpoint = "https://api.x.ai/v1/chat/completions"

// XAIAdapter speaks the xAI chat-completions dialect: Bearer auth,
// penalty fields omitted (xAI rejects them).
type XAIAdapter struct{}

func (XAIAdapter) StreamCompletion(ctx context.Context, cfg EndpointConfig, req CompletionRequest) (<-chan ChunkEvent, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultXAIEndpoint
	}
	client := newBearerClient(cfg.APIKey)
	body := buildRequestBody(req, false)
	return streamSSE(ctx, client, endpoint, body)
}

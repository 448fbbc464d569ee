package provider

import "context"

// AzureAdapter speaks the Azure-AI-Foundry-compatible dialect:
// api-key header auth, penalty fields included, endpoint is already
// deployment-specific so it is used verbatim.
type AzureAdapter struct{}

func (AzureAdapter) StreamCompletion(ctx context.Context, cfg EndpointConfig, req CompletionRequest) (<-chan ChunkEvent, error) {
	client := newAPIKeyClient(cfg.APIKey)
	body := buildRequestBody(req, true)
	return streamSSE(ctx, client, cfg.Endpoint, body)
}

package provider

import (
	"net/http"
)

// bearerTokenTransport injects "Authorization: Bearer <token>", used
// by the OpenAI-style and xAI-style adapters.
type bearerTokenTransport struct {
	base  http.RoundTripper
	token string
}

func (t *bearerTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(req)
}

// apiKeyTransport injects "api-key: <token>", used by the
// Azure-style adapter.
type apiKeyTransport struct {
	base  http.RoundTripper
	token string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("api-key", t.token)
	return t.base.RoundTrip(req)
}

func newBearerClient(token string) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{Transport: &bearerTokenTransport{base: transport, token: token}}
}

func newAPIKeyClient(token string) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{Transport: &apiKeyTransport{base: transport, token: token}}
}

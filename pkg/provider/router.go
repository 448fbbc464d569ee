package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v4"

	"github.com/codeready-toolchain/deliberate/pkg/models"
)

// ErrNotConfigured is returned when a (user, model) pair has no
// credential-store entry or the entry has no key.
var ErrNotConfigured = errors.New("provider: model not configured for user")

// ErrNotImplemented is returned for provider tags without an adapter.
var ErrNotImplemented = errors.New("provider: no adapter for provider tag")

// Resolver is the subset of credstore.Store the Router depends on.
type Resolver interface {
	Resolve(ctx context.Context, userEmail, modelName string) (endpoint string, provider models.Provider, apiKey string, err error)
}

// Router resolves (user, modelName) to a configured adapter and
// drives the retry policy around transient provider failures.
type Router struct {
	resolver Resolver
	adapters map[models.Provider]Adapter
	maxRetries int
	log      *slog.Logger
}

func NewRouter(resolver Resolver, maxRetries int, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		resolver: resolver,
		adapters: map[models.Provider]Adapter{
			models.ProviderOpenAI: OpenAIAdapter{},
			models.ProviderAzure:  AzureAdapter{},
			models.ProviderXAI:    XAIAdapter{},
		},
		maxRetries: maxRetries,
		log:        log,
	}
}

// StreamCompletion resolves credentials for (userEmail, req.Model),
// selects the matching adapter, and streams the completion. Transient
// provider failures (network errors, 5xx, 429) that occur before any
// chunk is emitted are retried with exponential backoff up to
// maxRetries times after the first attempt.
func (r *Router) StreamCompletion(ctx context.Context, userEmail string, req CompletionRequest) (<-chan ChunkEvent, error) {
	endpoint, providerTag, apiKey, err := r.resolver.Resolve(ctx, userEmail, req.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotConfigured, req.Model, err)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, req.Model)
	}
	adapter, ok := r.adapters[providerTag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, providerTag)
	}

	cfg := EndpointConfig{Endpoint: endpoint, APIKey: apiKey}

	var stream <-chan ChunkEvent
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(r.maxRetries)), ctx)
	attempt := 0
	operation := func() error {
		attempt++
		s, err := adapter.StreamCompletion(ctx, cfg, req)
		if err != nil {
			var provErr *Error
			if errors.As(err, &provErr) && !provErr.Retryable() {
				return backoff.Permanent(err)
			}
			r.log.Warn("provider call failed, retrying", "model", req.Model, "attempt", attempt, "error", err)
			return err
		}
		stream = s
		return nil
	}
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return stream, nil
}

package services

import (
	"context"

	"github.com/codeready-toolchain/deliberate/pkg/credstore"
	"github.com/codeready-toolchain/deliberate/pkg/models"
)

// CredentialResolver adapts credstore.Store's Resolved-struct return
// to the flat tuple shape provider.Router depends on, keeping the
// provider package free of any dependency on credstore's types.
type CredentialResolver struct {
	Store *credstore.Store
}

func (r *CredentialResolver) Resolve(ctx context.Context, userEmail, modelName string) (string, models.Provider, string, error) {
	resolved, err := r.Store.Resolve(ctx, userEmail, modelName)
	if err != nil {
		return "", "", "", err
	}
	return resolved.Endpoint, resolved.Provider, resolved.PlaintextKey, nil
}

package credstore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/deliberate/pkg/models"
)

type fakeProtector struct{}

func (fakeProtector) Seal(plaintext string) (string, error) { return "SEALED[" + plaintext + "]", nil }
func (fakeProtector) Unseal(sealed string) (string, error) {
	if len(sealed) < 9 || sealed[:7] != "SEALED[" {
		return "", errors.New("not sealed by fakeProtector")
	}
	return sealed[7 : len(sealed)-1], nil
}

type fakeRepo struct {
	byName map[string]*models.ConfiguredModel
	byID   map[uuid.UUID]*models.ConfiguredModel
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byName: map[string]*models.ConfiguredModel{}, byID: map[uuid.UUID]*models.ConfiguredModel{}}
}

func key(user, model string) string { return user + "/" + model }

func (r *fakeRepo) List(ctx context.Context, userEmail string) ([]models.ConfiguredModel, error) {
	var out []models.ConfiguredModel
	for _, m := range r.byID {
		if m.UserEmail == userEmail {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetByName(ctx context.Context, userEmail, modelName string) (*models.ConfiguredModel, error) {
	if m, ok := r.byName[key(userEmail, modelName)]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, userEmail string, id uuid.UUID) (*models.ConfiguredModel, error) {
	if m, ok := r.byID[id]; ok && m.UserEmail == userEmail {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeRepo) Insert(ctx context.Context, m *models.ConfiguredModel) error {
	cp := *m
	r.byID[m.ID] = &cp
	r.byName[key(m.UserEmail, m.ModelName)] = &cp
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, m *models.ConfiguredModel) error {
	old := r.byID[m.ID]
	delete(r.byName, key(old.UserEmail, old.ModelName))
	cp := *m
	r.byID[m.ID] = &cp
	r.byName[key(m.UserEmail, m.ModelName)] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, userEmail string, id uuid.UUID) error {
	m, ok := r.byID[id]
	if !ok || m.UserEmail != userEmail {
		return nil
	}
	delete(r.byName, key(userEmail, m.ModelName))
	delete(r.byID, id)
	return nil
}

func TestStore_AddAndResolve(t *testing.T) {
	store := NewStore(newFakeRepo(), fakeProtector{}, nil)

	_, err := store.Add(context.Background(), AddInput{
		UserEmail: "alice@example.com", ModelName: "gpt-4", Endpoint: "https://api.openai.com/v1/chat/completions",
		Provider: models.ProviderOpenAI, APIKey: "sk-secret",
	})
	require.NoError(t, err)

	resolved, err := store.Resolve(context.Background(), "alice@example.com", "gpt-4")
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", resolved.PlaintextKey)
	assert.Equal(t, models.ProviderOpenAI, resolved.Provider)
}

func TestStore_AddConflict(t *testing.T) {
	store := NewStore(newFakeRepo(), fakeProtector{}, nil)
	in := AddInput{UserEmail: "alice@example.com", ModelName: "gpt-4", Provider: models.ProviderOpenAI, APIKey: "sk-1"}
	_, err := store.Add(context.Background(), in)
	require.NoError(t, err)

	_, err = store.Add(context.Background(), in)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestStore_ResolveNotFound(t *testing.T) {
	store := NewStore(newFakeRepo(), fakeProtector{}, nil)
	_, err := store.Resolve(context.Background(), "alice@example.com", "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListNeverLeaksKeys(t *testing.T) {
	store := NewStore(newFakeRepo(), fakeProtector{}, nil)
	_, err := store.Add(context.Background(), AddInput{
		UserEmail: "alice@example.com", ModelName: "gpt-4", Provider: models.ProviderOpenAI, APIKey: "sk-secret",
	})
	require.NoError(t, err)

	rows, err := store.List(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].EncryptedKey)
}

func TestStore_UpdateClearsKeyWithExplicitEmptyPointer(t *testing.T) {
	store := NewStore(newFakeRepo(), fakeProtector{}, nil)
	m, err := store.Add(context.Background(), AddInput{
		UserEmail: "alice@example.com", ModelName: "gpt-4", Provider: models.ProviderOpenAI, APIKey: "sk-secret",
	})
	require.NoError(t, err)

	empty := ""
	_, err = store.Update(context.Background(), UpdateInput{
		ID: m.ID, UserEmail: "alice@example.com", ModelName: "gpt-4", Provider: models.ProviderOpenAI, APIKeyPtr: &empty,
	})
	require.NoError(t, err)

	resolved, err := store.Resolve(context.Background(), "alice@example.com", "gpt-4")
	require.NoError(t, err)
	assert.Empty(t, resolved.PlaintextKey)
}

func TestMissingKeysFor(t *testing.T) {
	store := NewStore(newFakeRepo(), fakeProtector{}, nil)
	_, err := store.Add(context.Background(), AddInput{
		UserEmail: "alice@example.com", ModelName: "gpt-4", Provider: models.ProviderOpenAI, APIKey: "sk-secret",
	})
	require.NoError(t, err)

	err = MissingKeysFor(context.Background(), store, "alice@example.com", []string{"gpt-4", "claude-3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude-3")
}

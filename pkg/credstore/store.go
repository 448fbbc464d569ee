package credstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/models"
)

// Repository persists ConfiguredModel rows. Keys stored in it are
// always already-sealed; Repository never sees plaintext.
type Repository interface {
	List(ctx context.Context, userEmail string) ([]models.ConfiguredModel, error)
	GetByName(ctx context.Context, userEmail, modelName string) (*models.ConfiguredModel, error)
	GetByID(ctx context.Context, userEmail string, id uuid.UUID) (*models.ConfiguredModel, error)
	Insert(ctx context.Context, m *models.ConfiguredModel) error
	Update(ctx context.Context, m *models.ConfiguredModel) error
	Delete(ctx context.Context, userEmail string, id uuid.UUID) error
}

// Store is the Credential Store (spec ยง4.1): per-user model roster
// with keys sealed at rest behind an injected Protector.
type Store struct {
	repo      Repository
	protector Protector
	log       *slog.Logger
}

func NewStore(repo Repository, protector Protector, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{repo: repo, protector: protector, log: log}
}

// List returns a user's configured models without keys.
func (s *Store) List(ctx context.Context, userEmail string) ([]models.ConfiguredModel, error) {
	rows, err := s.repo.List(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].EncryptedKey = ""
	}
	return rows, nil
}

// Resolved is the transient, never-persisted result of Resolve: the
// endpoint and provider tag to dial, plus the unsealed key (empty if
// none is stored).
type Resolved struct {
	Endpoint     string
	Provider     models.Provider
	PlaintextKey string
}

// Resolve looks up a user's model configuration and unseals its key.
func (s *Store) Resolve(ctx context.Context, userEmail, modelName string) (*Resolved, error) {
	row, err := s.repo.GetByName(ctx, userEmail, modelName)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	if row.EncryptedKey == "" {
		return &Resolved{Endpoint: row.Endpoint, Provider: row.Provider}, nil
	}
	plain, err := s.protector.Unseal(row.EncryptedKey)
	if err != nil {
		return nil, &CryptoError{Op: "unseal", Err: err}
	}
	return &Resolved{Endpoint: row.Endpoint, Provider: row.Provider, PlaintextKey: plain}, nil
}

// AddInput is the write payload for Add; APIKey may be empty to
// register an endpoint without a key yet.
type AddInput struct {
	UserEmail   string
	ModelName   string
	DisplayName string
	Endpoint    string
	Provider    models.Provider
	APIKey      string
}

// Add registers a new model binding. It fails with ErrConflict if the
// (user, modelName) pair already exists.
func (s *Store) Add(ctx context.Context, in AddInput) (*models.ConfiguredModel, error) {
	existing, err := s.repo.GetByName(ctx, in.UserEmail, in.ModelName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	sealed, err := s.sealIfPresent(in.APIKey)
	if err != nil {
		return nil, err
	}

	m := &models.ConfiguredModel{
		ID:           uuid.New(),
		UserEmail:    in.UserEmail,
		ModelName:    in.ModelName,
		DisplayName:  in.DisplayName,
		Endpoint:     in.Endpoint,
		Provider:     in.Provider,
		EncryptedKey: sealed,
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("configured model added", "user", in.UserEmail, "model", in.ModelName, "provider", in.Provider)
	m.EncryptedKey = ""
	return m, nil
}

// UpdateInput mirrors AddInput for an existing row identified by ID.
// A zero-value APIKeyPtr leaves the stored key untouched; a non-nil
// pointer to "" clears it.
type UpdateInput struct {
	ID          uuid.UUID
	UserEmail   string
	ModelName   string
	DisplayName string
	Endpoint    string
	Provider    models.Provider
	APIKeyPtr   *string
}

func (s *Store) Update(ctx context.Context, in UpdateInput) (*models.ConfiguredModel, error) {
	existing, err := s.repo.GetByID(ctx, in.UserEmail, in.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if in.ModelName != existing.ModelName {
		collision, err := s.repo.GetByName(ctx, in.UserEmail, in.ModelName)
		if err != nil {
			return nil, err
		}
		if collision != nil && collision.ID != existing.ID {
			return nil, ErrConflict
		}
	}

	sealed := existing.EncryptedKey
	if in.APIKeyPtr != nil {
		sealed, err = s.sealIfPresent(*in.APIKeyPtr)
		if err != nil {
			return nil, err
		}
	}

	existing.ModelName = in.ModelName
	existing.DisplayName = in.DisplayName
	existing.Endpoint = in.Endpoint
	existing.Provider = in.Provider
	existing.EncryptedKey = sealed

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	existing.EncryptedKey = ""
	return existing, nil
}

func (s *Store) Delete(ctx context.Context, userEmail string, id uuid.UUID) error {
	return s.repo.Delete(ctx, userEmail, id)
}

func (s *Store) sealIfPresent(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	sealed, err := s.protector.Seal(plaintext)
	if err != nil {
		return "", &CryptoError{Op: "seal", Err: err}
	}
	return sealed, nil
}

// MissingKeysFor checks that every distinct model name referenced by
// session personas has a resolvable key for the given user, returning
// a descriptive error naming every model that doesn't.
func MissingKeysFor(ctx context.Context, s *Store, userEmail string, modelNames []string) error {
	seen := map[string]bool{}
	var missing []string
	for _, name := range modelNames {
		if seen[name] {
			continue
		}
		seen[name] = true
		resolved, err := s.Resolve(ctx, userEmail, name)
		if errors.Is(err, ErrNotFound) || (err == nil && resolved.PlaintextKey == "") {
			missing = append(missing, name)
			continue
		}
		if err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("Missing API key(s) for models: %v", missing)
	}
	return nil
}

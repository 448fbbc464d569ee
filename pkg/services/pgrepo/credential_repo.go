package pgrepo

import (
	"context"
	stdsql "database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/credstore"
	"github.com/codeready-toolchain/deliberate/pkg/models"
)

// CredentialRepository implements credstore.Repository against
// database/sql, the same way SessionRepository implements the
// session-service boundary.
type CredentialRepository struct {
	db *stdsql.DB
}

func NewCredentialRepository(db *stdsql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) List(ctx context.Context, userEmail string) ([]models.ConfiguredModel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_email, model_name, display_name, endpoint, provider, encrypted_key, created_at, updated_at
		FROM configured_models WHERE user_email = $1 ORDER BY model_name ASC`, userEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ConfiguredModel
	for rows.Next() {
		m, err := scanConfiguredModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *CredentialRepository) GetByName(ctx context.Context, userEmail, modelName string) (*models.ConfiguredModel, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_email, model_name, display_name, endpoint, provider, encrypted_key, created_at, updated_at
		FROM configured_models WHERE user_email = $1 AND model_name = $2`, userEmail, modelName)
	m, err := scanConfiguredModel(row)
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *CredentialRepository) GetByID(ctx context.Context, userEmail string, id uuid.UUID) (*models.ConfiguredModel, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_email, model_name, display_name, endpoint, provider, encrypted_key, created_at, updated_at
		FROM configured_models WHERE user_email = $1 AND id = $2`, userEmail, id)
	m, err := scanConfiguredModel(row)
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *CredentialRepository) Insert(ctx context.Context, m *models.ConfiguredModel) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO configured_models (id, user_email, model_name, display_name, endpoint, provider, encrypted_key, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.UserEmail, m.ModelName, m.DisplayName, m.Endpoint, m.Provider, m.EncryptedKey, m.CreatedAt, m.UpdatedAt)
	return err
}

func (r *CredentialRepository) Update(ctx context.Context, m *models.ConfiguredModel) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE configured_models SET model_name=$2, display_name=$3, endpoint=$4, provider=$5, encrypted_key=$6, updated_at=now()
		WHERE id=$1`, m.ID, m.ModelName, m.DisplayName, m.Endpoint, m.Provider, m.EncryptedKey)
	return err
}

func (r *CredentialRepository) Delete(ctx context.Context, userEmail string, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM configured_models WHERE user_email=$1 AND id=$2`, userEmail, id)
	return err
}

func scanConfiguredModel(row rowScanner) (*models.ConfiguredModel, error) {
	var m models.ConfiguredModel
	if err := row.Scan(&m.ID, &m.UserEmail, &m.ModelName, &m.DisplayName, &m.Endpoint, &m.Provider, &m.EncryptedKey, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

var _ credstore.Repository = (*CredentialRepository)(nil)

// Package pgrepo implements the services-layer repository interfaces
// directly against database/sql (pgx driver), the way the teacher's
// ent-backed service layer built rows inside a transaction, minus the
// code-generated query builder.
package pgrepo

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/models"
	"github.com/codeready-toolchain/deliberate/pkg/services"
)

type SessionRepository struct {
	db *stdsql.DB
}

func NewSessionRepository(db *stdsql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Insert(ctx context.Context, s *models.Session) error {
	creatorJSON, err := json.Marshal(s.CreatorConfig)
	if err != nil {
		return fmt.Errorf("marshal creator config: %w", err)
	}
	reviewersJSON, err := json.Marshal(s.ReviewersConfig)
	if err != nil {
		return fmt.Errorf("marshal reviewers config: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, display_name, status, stop_reason, max_iterations, current_iteration,
			feedback_version, stop_marker, stop_on_reviewer_approved, needs_final_iteration, run_mode,
			topic, final_content, creator_config, reviewers_config, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		s.ID, s.DisplayName, s.Status, s.StopReason, s.MaxIterations, s.CurrentIteration,
		s.FeedbackVersion, s.StopMarker, s.StopOnReviewerApproved, s.NeedsFinalIteration, s.RunMode,
		s.Topic, s.FinalContent, creatorJSON, reviewersJSON, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, display_name, status, stop_reason, max_iterations, current_iteration,
			feedback_version, stop_marker, stop_on_reviewer_approved, needs_final_iteration, run_mode,
			topic, final_content, creator_config, reviewers_config, created_at, updated_at
		FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, display_name, status, stop_reason, max_iterations, current_iteration,
			feedback_version, stop_marker, stop_on_reviewer_approved, needs_final_iteration, run_mode,
			topic, final_content, creator_config, reviewers_config, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *SessionRepository) Update(ctx context.Context, s *models.Session) error {
	creatorJSON, err := json.Marshal(s.CreatorConfig)
	if err != nil {
		return fmt.Errorf("marshal creator config: %w", err)
	}
	reviewersJSON, err := json.Marshal(s.ReviewersConfig)
	if err != nil {
		return fmt.Errorf("marshal reviewers config: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET display_name=$2, status=$3, stop_reason=$4, max_iterations=$5,
			current_iteration=$6, feedback_version=$7, stop_marker=$8, stop_on_reviewer_approved=$9,
			needs_final_iteration=$10, run_mode=$11, topic=$12, final_content=$13,
			creator_config=$14, reviewers_config=$15, updated_at=$16
		WHERE id=$1`,
		s.ID, s.DisplayName, s.Status, s.StopReason, s.MaxIterations, s.CurrentIteration,
		s.FeedbackVersion, s.StopMarker, s.StopOnReviewerApproved, s.NeedsFinalIteration, s.RunMode,
		s.Topic, s.FinalContent, creatorJSON, reviewersJSON, s.UpdatedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var s models.Session
	var creatorJSON, reviewersJSON []byte
	err := row.Scan(&s.ID, &s.DisplayName, &s.Status, &s.StopReason, &s.MaxIterations, &s.CurrentIteration,
		&s.FeedbackVersion, &s.StopMarker, &s.StopOnReviewerApproved, &s.NeedsFinalIteration, &s.RunMode,
		&s.Topic, &s.FinalContent, &creatorJSON, &reviewersJSON, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(creatorJSON, &s.CreatorConfig); err != nil {
		return nil, fmt.Errorf("unmarshal creator config: %w", err)
	}
	if err := json.Unmarshal(reviewersJSON, &s.ReviewersConfig); err != nil {
		return nil, fmt.Errorf("unmarshal reviewers config: %w", err)
	}
	return &s, nil
}

package pgrepo

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/models"
	"github.com/codeready-toolchain/deliberate/pkg/services"
)

type FeedbackRepository struct {
	db *stdsql.DB
}

func NewFeedbackRepository(db *stdsql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Insert(ctx context.Context, f *models.FeedbackRound) error {
	summariesJSON, err := json.Marshal(f.ReviewerSummaries)
	if err != nil {
		return fmt.Errorf("marshal reviewer summaries: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO feedback_rounds (id, session_id, iteration, draft_content, all_reviewers_approved, reviewer_summaries, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		f.ID, f.SessionID, f.Iteration, f.DraftContent, f.AllReviewersApproved, summariesJSON, f.CreatedAt)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return services.ErrAlreadyExists
	}
	return err
}

func (r *FeedbackRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.FeedbackRound, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, iteration, draft_content, user_feedback, user_feedback_at,
			all_reviewers_approved, reviewer_summaries, created_at
		FROM feedback_rounds WHERE session_id = $1 ORDER BY iteration ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FeedbackRound
	for rows.Next() {
		var f models.FeedbackRound
		var summariesJSON []byte
		var userFeedbackAt stdsql.NullTime
		if err := rows.Scan(&f.ID, &f.SessionID, &f.Iteration, &f.DraftContent, &f.UserFeedback, &userFeedbackAt,
			&f.AllReviewersApproved, &summariesJSON, &f.CreatedAt); err != nil {
			return nil, err
		}
		if userFeedbackAt.Valid {
			t := userFeedbackAt.Time
			f.UserFeedbackAt = &t
		}
		if err := json.Unmarshal(summariesJSON, &f.ReviewerSummaries); err != nil {
			return nil, fmt.Errorf("unmarshal reviewer summaries: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FeedbackRepository) AttachUserFeedback(ctx context.Context, sessionID uuid.UUID, iteration int, feedback string) error {
	now := time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE feedback_rounds SET user_feedback=$3, user_feedback_at=$4
		WHERE session_id=$1 AND iteration=$2`, sessionID, iteration, feedback, now)
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

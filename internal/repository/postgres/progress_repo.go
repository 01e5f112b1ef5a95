package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yourorg/vesto-server/internal/domain"
)

type ProgressRepo struct {
	db *sqlx.DB
}

func NewProgressRepo(db *sqlx.DB) *ProgressRepo {
	return &ProgressRepo{db: db}
}

func (r *ProgressRepo) Get(ctx context.Context, userID uuid.UUID, moduleID string) (*domain.ModuleProgress, error) {
	var p domain.ModuleProgress
	err := r.db.GetContext(ctx, &p,
		`SELECT * FROM module_progress WHERE user_id = $1 AND module_id = $2`, userID, moduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ModuleProgress, error) {
	var rows []domain.ModuleProgress
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM module_progress WHERE user_id = $1 ORDER BY module_id`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert writes a fully computed progress row. The unique constraint on
// (user_id, module_id) is load-bearing: concurrent writers for the same key
// resolve to a single row, last write wins on the payload fields.
func (r *ProgressRepo) Upsert(ctx context.Context, p *domain.ModuleProgress) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO module_progress
			(id, user_id, module_id, completion_percentage, status,
			 total_questions, correct_answers, average_score,
			 started_at, completed_at, last_accessed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, module_id) DO UPDATE SET
			completion_percentage = EXCLUDED.completion_percentage,
			status                = EXCLUDED.status,
			total_questions       = EXCLUDED.total_questions,
			correct_answers       = EXCLUDED.correct_answers,
			average_score         = EXCLUDED.average_score,
			started_at            = EXCLUDED.started_at,
			completed_at          = EXCLUDED.completed_at,
			last_accessed_at      = EXCLUDED.last_accessed_at,
			updated_at            = EXCLUDED.updated_at
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.ModuleID, p.CompletionPercentage, p.Status,
		p.TotalQuestions, p.CorrectAnswers, p.AverageScore,
		p.StartedAt, p.CompletedAt, p.LastAccessedAt, p.UpdatedAt).
		Scan(&p.ID, &p.CreatedAt)
}

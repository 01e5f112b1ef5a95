package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yourorg/vesto-server/internal/domain"
)

type PitchRepo struct {
	db *sqlx.DB
}

func NewPitchRepo(db *sqlx.DB) *PitchRepo {
	return &PitchRepo{db: db}
}

func (r *PitchRepo) Create(ctx context.Context, p *domain.PitchSubmission) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO pitch_submissions
			(id, user_id, company_id, symbol, company_name, pitch_text,
			 status, ai_feedback, ai_score, invested)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		RETURNING submitted_at, reviewed_at`
	return r.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.CompanyID, p.Symbol, p.CompanyName, p.PitchText,
		p.Status, p.AIFeedback, p.AIScore).
		Scan(&p.SubmittedAt, &p.ReviewedAt)
}

func (r *PitchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PitchSubmission, error) {
	var p domain.PitchSubmission
	err := r.db.GetContext(ctx, &p, `SELECT * FROM pitch_submissions WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("pitch submission not found: %w", err)
	}
	return &p, nil
}

func (r *PitchRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PitchSubmission, error) {
	var pitches []domain.PitchSubmission
	err := r.db.SelectContext(ctx, &pitches,
		`SELECT * FROM pitch_submissions WHERE user_id = $1 ORDER BY submitted_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pitches, nil
}

// MarkInvestedTx stamps the submission with the purchase details. Runs in the
// same transaction as the holding upsert so the pitch and the purchase change
// together or not at all.
func (r *PitchRepo) MarkInvestedTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, amount, shares, price float64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE pitch_submissions
		SET invested = TRUE, investment_amount = $1, shares_purchased = $2,
		    purchase_price = $3, invested_at = NOW()
		WHERE id = $4`,
		amount, shares, price, id)
	return err
}

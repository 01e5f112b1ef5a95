package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yourorg/vesto-server/internal/domain"
)

type HoldingRepo struct {
	db *sqlx.DB
}

func NewHoldingRepo(db *sqlx.DB) *HoldingRepo {
	return &HoldingRepo{db: db}
}

func (r *HoldingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	var holdings []domain.Holding
	err := r.db.SelectContext(ctx, &holdings,
		`SELECT * FROM holdings WHERE user_id = $1 ORDER BY symbol`, userID)
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

func (r *HoldingRepo) ListByUserTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) ([]domain.Holding, error) {
	var holdings []domain.Holding
	err := tx.SelectContext(ctx, &holdings,
		`SELECT * FROM holdings WHERE user_id = $1 ORDER BY symbol`, userID)
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

func (r *HoldingRepo) GetBySymbolTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, symbol string) (*domain.Holding, error) {
	var h domain.Holding
	err := tx.GetContext(ctx, &h,
		`SELECT * FROM holdings WHERE user_id = $1 AND symbol = $2`, userID, symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

// UpsertTx writes a fully computed holding row. The unique constraint on
// (user_id, symbol) guarantees at most one row per key even under concurrent
// writers; the derived fields are taken verbatim from the caller.
func (r *HoldingRepo) UpsertTx(ctx context.Context, tx *sqlx.Tx, h *domain.Holding) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	query := `
		INSERT INTO holdings (id, user_id, symbol, company_name, shares, buy_price, buy_date,
		                      current_price, current_value, gain_loss, gain_loss_percent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, symbol) DO UPDATE SET
			shares            = EXCLUDED.shares,
			buy_price         = EXCLUDED.buy_price,
			current_price     = EXCLUDED.current_price,
			current_value     = EXCLUDED.current_value,
			gain_loss         = EXCLUDED.gain_loss,
			gain_loss_percent = EXCLUDED.gain_loss_percent,
			updated_at        = NOW()
		RETURNING id, buy_date, created_at, updated_at`
	return tx.QueryRowContext(ctx, query,
		h.ID, h.UserID, h.Symbol, h.CompanyName, h.Shares, h.BuyPrice, h.BuyDate,
		h.CurrentPrice, h.CurrentValue, h.GainLoss, h.GainLossPercent).
		Scan(&h.ID, &h.BuyDate, &h.CreatedAt, &h.UpdatedAt)
}

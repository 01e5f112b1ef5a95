package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yourorg/vesto-server/internal/domain"
)

type AccountRepo struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Create seeds the settings row for a new user. A no-op if the row exists.
func (r *AccountRepo) Create(ctx context.Context, userID uuid.UUID, startingCash float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account_settings (user_id, starting_cash)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, startingCash)
	return err
}

func (r *AccountRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.AccountSettings, error) {
	var a domain.AccountSettings
	err := r.db.GetContext(ctx, &a, `SELECT * FROM account_settings WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("account settings not found: %w", err)
	}
	return &a, nil
}

// GetForUpdateTx locks the user's settings row for the duration of the
// transaction, serializing concurrent invests for the same user. The row is
// created on the fly for users registered before the settings table existed.
func (r *AccountRepo) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, defaultStartingCash float64) (*domain.AccountSettings, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO account_settings (user_id, starting_cash)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, defaultStartingCash)
	if err != nil {
		return nil, fmt.Errorf("ensure account settings: %w", err)
	}
	var a domain.AccountSettings
	err = tx.GetContext(ctx, &a, `SELECT * FROM account_settings WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		return nil, fmt.Errorf("lock account settings: %w", err)
	}
	return &a, nil
}

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yourorg/vesto-server/internal/domain"
	pgRepo "github.com/yourorg/vesto-server/internal/repository/postgres"
)

// Service applies buy orders to user portfolios and keeps the derived
// financial fields consistent. Each invest runs in one transaction with the
// account row locked, so concurrent buys for the same user serialize and the
// pitch stamp commits together with the holding.
type Service struct {
	db       *sqlx.DB
	accounts *pgRepo.AccountRepo
	holdings *pgRepo.HoldingRepo
	pitches  *pgRepo.PitchRepo
}

func NewService(db *sqlx.DB, accounts *pgRepo.AccountRepo, holdings *pgRepo.HoldingRepo, pitches *pgRepo.PitchRepo) *Service {
	return &Service{
		db:       db,
		accounts: accounts,
		holdings: holdings,
		pitches:  pitches,
	}
}

func (s *Service) Invest(ctx context.Context, callerID uuid.UUID, o BuyOrder) (*domain.Holding, error) {
	if err := validateBuyOrder(o); err != nil {
		return nil, err
	}
	if o.UserID != callerID {
		return nil, ErrForbidden
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdateTx(ctx, tx, o.UserID, DefaultStartingCash)
	if err != nil {
		return nil, err
	}

	holdings, err := s.holdings.ListByUserTx(ctx, tx, o.UserID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}

	available := availableCash(account.StartingCash, holdings)
	if o.InvestmentAmount > available {
		return nil, &InsufficientFundsError{Available: available}
	}

	existing, err := s.holdings.GetBySymbolTx(ctx, tx, o.UserID, o.Symbol)
	if err != nil {
		return nil, fmt.Errorf("get holding: %w", err)
	}

	holding := applyBuy(existing, o, time.Now().UTC())
	if err := s.holdings.UpsertTx(ctx, tx, &holding); err != nil {
		return nil, fmt.Errorf("upsert holding: %w", err)
	}

	if o.PitchSubmissionID != nil {
		err := s.pitches.MarkInvestedTx(ctx, tx, *o.PitchSubmissionID, o.InvestmentAmount, o.Shares, o.BuyPrice)
		if err != nil {
			return nil, fmt.Errorf("mark pitch invested: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &holding, nil
}

// PortfolioSummary aggregates a user's portfolio for the overview endpoint.
type PortfolioSummary struct {
	StartingCash  float64 `json:"starting_cash"`
	InvestedCost  float64 `json:"invested_cost"`
	AvailableCash float64 `json:"available_cash"`
	CurrentValue  float64 `json:"current_value"`
	GainLoss      float64 `json:"gain_loss"`
}

type PortfolioView struct {
	Holdings []domain.Holding `json:"holdings"`
	Summary  PortfolioSummary `json:"summary"`
}

func (s *Service) Portfolio(ctx context.Context, userID uuid.UUID) (*PortfolioView, error) {
	holdings, err := s.holdings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	if holdings == nil {
		holdings = []domain.Holding{}
	}

	startingCash := float64(DefaultStartingCash)
	if account, err := s.accounts.Get(ctx, userID); err == nil {
		startingCash = account.StartingCash
	}

	summary := PortfolioSummary{
		StartingCash:  startingCash,
		InvestedCost:  investedCost(holdings),
		AvailableCash: availableCash(startingCash, holdings),
	}
	for _, h := range holdings {
		summary.CurrentValue += h.CurrentValue
		summary.GainLoss += h.GainLoss
	}
	return &PortfolioView{Holdings: holdings, Summary: summary}, nil
}

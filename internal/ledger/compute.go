package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/vesto-server/internal/domain"
)

// DefaultStartingCash is the simulated bankroll seeded for new accounts.
const DefaultStartingCash = 10000

// BuyOrder is a validated request to add shares to a user's portfolio.
type BuyOrder struct {
	UserID            uuid.UUID
	Symbol            string
	CompanyName       string
	Shares            float64
	BuyPrice          float64
	InvestmentAmount  float64
	PitchSubmissionID *uuid.UUID
}

// investedCost is the sum of cost bases across all holdings: what the user
// has committed of the bankroll, independent of market movement.
func investedCost(holdings []domain.Holding) float64 {
	var total float64
	for _, h := range holdings {
		total += h.Shares * h.BuyPrice
	}
	return total
}

func availableCash(startingCash float64, holdings []domain.Holding) float64 {
	return startingCash - investedCost(holdings)
}

// applyBuy folds a buy order into an existing holding, or creates one when
// existing is nil. buy_price becomes the weighted-average cost per share;
// current_* and gain_* are recomputed against the order's price.
func applyBuy(existing *domain.Holding, o BuyOrder, now time.Time) domain.Holding {
	if existing == nil {
		return domain.Holding{
			UserID:          o.UserID,
			Symbol:          o.Symbol,
			CompanyName:     o.CompanyName,
			Shares:          o.Shares,
			BuyPrice:        o.BuyPrice,
			BuyDate:         now,
			CurrentPrice:    o.BuyPrice,
			CurrentValue:    o.Shares * o.BuyPrice,
			GainLoss:        0,
			GainLossPercent: 0,
		}
	}

	newShares := existing.Shares + o.Shares
	totalCost := existing.Shares*existing.BuyPrice + o.InvestmentAmount
	currentValue := newShares * o.BuyPrice
	gainLoss := currentValue - totalCost
	gainLossPercent := 0.0
	if totalCost > 0 {
		gainLossPercent = gainLoss / totalCost * 100
	}

	h := *existing
	h.Shares = newShares
	h.BuyPrice = totalCost / newShares
	h.CurrentPrice = o.BuyPrice
	h.CurrentValue = currentValue
	h.GainLoss = gainLoss
	h.GainLossPercent = gainLossPercent
	return h
}

func validateBuyOrder(o BuyOrder) error {
	if o.UserID == uuid.Nil {
		return errInvalid("userId is required")
	}
	if o.Symbol == "" {
		return errInvalid("symbol is required")
	}
	if o.Shares <= 0 {
		return errInvalid("shares must be greater than zero")
	}
	if o.BuyPrice <= 0 {
		return errInvalid("buyPrice must be greater than zero")
	}
	if o.InvestmentAmount <= 0 {
		return errInvalid("investmentAmount must be greater than zero")
	}
	return nil
}

package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/vesto-server/internal/domain"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func buyOrder(symbol string, shares, price, amount float64) BuyOrder {
	return BuyOrder{
		UserID:           uuid.New(),
		Symbol:           symbol,
		CompanyName:      symbol + " Inc",
		Shares:           shares,
		BuyPrice:         price,
		InvestmentAmount: amount,
	}
}

func TestApplyBuyFirstPurchase(t *testing.T) {
	// $2,000 into AAPL at $200/share.
	now := time.Now().UTC()
	h := applyBuy(nil, buyOrder("AAPL", 10, 200, 2000), now)

	if h.Shares != 10 {
		t.Errorf("shares = %v, want 10", h.Shares)
	}
	if h.BuyPrice != 200 {
		t.Errorf("buy_price = %v, want 200", h.BuyPrice)
	}
	if h.CurrentValue != 2000 {
		t.Errorf("current_value = %v, want 2000", h.CurrentValue)
	}
	if h.GainLoss != 0 || h.GainLossPercent != 0 {
		t.Errorf("gain_loss = %v (%v%%), want 0", h.GainLoss, h.GainLossPercent)
	}
	if !h.BuyDate.Equal(now) {
		t.Errorf("buy_date = %v, want %v", h.BuyDate, now)
	}
}

func TestApplyBuyAccumulates(t *testing.T) {
	// Another $1,000 into the same AAPL holding at $250/share.
	now := time.Now().UTC()
	first := applyBuy(nil, buyOrder("AAPL", 10, 200, 2000), now)
	second := applyBuy(&first, buyOrder("AAPL", 4, 250, 1000), now)

	if second.Shares != 14 {
		t.Errorf("shares = %v, want 14", second.Shares)
	}
	wantAvg := (10*200.0 + 1000) / 14
	if !approxEqual(second.BuyPrice, wantAvg) {
		t.Errorf("buy_price = %v, want %v", second.BuyPrice, wantAvg)
	}
	if second.CurrentValue != 3500 {
		t.Errorf("current_value = %v, want 3500", second.CurrentValue)
	}
	if !approxEqual(second.GainLoss, 500) {
		t.Errorf("gain_loss = %v, want 500", second.GainLoss)
	}
	wantPct := 500.0 / 3000.0 * 100
	if !approxEqual(second.GainLossPercent, wantPct) {
		t.Errorf("gain_loss_percent = %v, want %v", second.GainLossPercent, wantPct)
	}
	// The invariant current_value == shares * current_price must hold.
	if !approxEqual(second.CurrentValue, second.Shares*second.CurrentPrice) {
		t.Errorf("current_value %v != shares*current_price %v", second.CurrentValue, second.Shares*second.CurrentPrice)
	}
}

func TestApplyBuyWeightedAverageSequence(t *testing.T) {
	// Final shares equal the sum of all share arguments; final buy_price is
	// total invested over total shares, regardless of order.
	buys := []struct {
		shares, price, amount float64
	}{
		{10, 200, 2000},
		{4, 250, 1000},
		{2.5, 180, 450},
		{7, 310, 2170},
	}

	now := time.Now().UTC()
	var holding *domain.Holding
	var wantShares, wantInvested float64
	for _, b := range buys {
		h := applyBuy(holding, buyOrder("MSFT", b.shares, b.price, b.amount), now)
		holding = &h
		wantShares += b.shares
		wantInvested += b.amount
	}

	if !approxEqual(holding.Shares, wantShares) {
		t.Errorf("shares = %v, want %v", holding.Shares, wantShares)
	}
	if !approxEqual(holding.BuyPrice, wantInvested/wantShares) {
		t.Errorf("buy_price = %v, want %v", holding.BuyPrice, wantInvested/wantShares)
	}
}

func TestAvailableCash(t *testing.T) {
	holdings := []domain.Holding{
		{Shares: 10, BuyPrice: 150},
		{Shares: 5, BuyPrice: 100},
	}
	if got := availableCash(10000, holdings); got != 8000 {
		t.Errorf("availableCash = %v, want 8000", got)
	}
	if got := availableCash(10000, nil); got != 10000 {
		t.Errorf("availableCash with no holdings = %v, want 10000", got)
	}
}

func TestValidateBuyOrder(t *testing.T) {
	valid := buyOrder("AAPL", 10, 200, 2000)

	cases := []struct {
		name   string
		mutate func(*BuyOrder)
	}{
		{"missing user", func(o *BuyOrder) { o.UserID = uuid.Nil }},
		{"missing symbol", func(o *BuyOrder) { o.Symbol = "" }},
		{"zero shares", func(o *BuyOrder) { o.Shares = 0 }},
		{"negative shares", func(o *BuyOrder) { o.Shares = -1 }},
		{"zero price", func(o *BuyOrder) { o.BuyPrice = 0 }},
		{"zero amount", func(o *BuyOrder) { o.InvestmentAmount = 0 }},
	}

	if err := validateBuyOrder(valid); err != nil {
		t.Fatalf("valid order rejected: %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := valid
			tc.mutate(&o)
			err := validateBuyOrder(o)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if _, ok := err.(*ValidationError); !ok {
				t.Errorf("error type = %T, want *ValidationError", err)
			}
		})
	}
}

func TestInsufficientFundsDetail(t *testing.T) {
	err := &InsufficientFundsError{Available: 8000}
	if got, want := err.Detail(), "Available: $8000.00"; got != want {
		t.Errorf("Detail() = %q, want %q", got, want)
	}
}

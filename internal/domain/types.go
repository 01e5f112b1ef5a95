package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

type PitchStatus string

const (
	PitchApproved PitchStatus = "approved"
	PitchRejected PitchStatus = "rejected"
)

type User struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	Email        string    `db:"email"         json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

// AccountSettings holds the simulation parameters for one user. Every user
// gets a row at registration; starting_cash is the simulated bankroll the
// ledger measures available cash against.
type AccountSettings struct {
	UserID       uuid.UUID `db:"user_id"       json:"user_id"`
	StartingCash float64   `db:"starting_cash" json:"starting_cash"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

// Holding is one user's simulated position in one instrument. buy_price is
// the weighted-average cost per share across all buys for the symbol; the
// current_* and gain_* fields are denormalized and recomputed on every write.
type Holding struct {
	ID              uuid.UUID `db:"id"                json:"id"`
	UserID          uuid.UUID `db:"user_id"           json:"user_id"`
	Symbol          string    `db:"symbol"            json:"symbol"`
	CompanyName     string    `db:"company_name"      json:"company_name"`
	Shares          float64   `db:"shares"            json:"shares"`
	BuyPrice        float64   `db:"buy_price"         json:"buy_price"`
	BuyDate         time.Time `db:"buy_date"          json:"buy_date"`
	CurrentPrice    float64   `db:"current_price"     json:"current_price"`
	CurrentValue    float64   `db:"current_value"     json:"current_value"`
	GainLoss        float64   `db:"gain_loss"         json:"gain_loss"`
	GainLossPercent float64   `db:"gain_loss_percent" json:"gain_loss_percent"`
	CreatedAt       time.Time `db:"created_at"        json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"        json:"updated_at"`
}

// PitchSubmission is a user's written investment thesis for one symbol,
// reviewed by the grading service. The invested fields are stamped at most
// once, when a purchase referencing the submission completes.
type PitchSubmission struct {
	ID               uuid.UUID   `db:"id"                json:"id"`
	UserID           uuid.UUID   `db:"user_id"           json:"user_id"`
	CompanyID        *uuid.UUID  `db:"company_id"        json:"company_id,omitempty"`
	Symbol           string      `db:"symbol"            json:"symbol"`
	CompanyName      string      `db:"company_name"      json:"company_name"`
	PitchText        string      `db:"pitch_text"        json:"pitch_text"`
	Status           PitchStatus `db:"status"            json:"status"`
	AIFeedback       string      `db:"ai_feedback"       json:"ai_feedback"`
	AIScore          float64     `db:"ai_score"          json:"ai_score"`
	Invested         bool        `db:"invested"          json:"invested"`
	InvestmentAmount *float64    `db:"investment_amount" json:"investment_amount,omitempty"`
	SharesPurchased  *float64    `db:"shares_purchased"  json:"shares_purchased,omitempty"`
	PurchasePrice    *float64    `db:"purchase_price"    json:"purchase_price,omitempty"`
	InvestedAt       *time.Time  `db:"invested_at"       json:"invested_at,omitempty"`
	SubmittedAt      time.Time   `db:"submitted_at"      json:"submitted_at"`
	ReviewedAt       time.Time   `db:"reviewed_at"       json:"reviewed_at"`
}

// ModuleProgress is the per-user, per-module completion record. status is
// always derived from completion_percentage; started_at and completed_at are
// write-once milestones.
type ModuleProgress struct {
	ID                   uuid.UUID      `db:"id"                    json:"id"`
	UserID               uuid.UUID      `db:"user_id"               json:"user_id"`
	ModuleID             string         `db:"module_id"             json:"module_id"`
	CompletionPercentage int            `db:"completion_percentage" json:"completion_percentage"`
	Status               ProgressStatus `db:"status"                json:"status"`
	TotalQuestions       int            `db:"total_questions"       json:"total_questions"`
	CorrectAnswers       int            `db:"correct_answers"       json:"correct_answers"`
	AverageScore         float64        `db:"average_score"         json:"average_score"`
	StartedAt            *time.Time     `db:"started_at"            json:"started_at,omitempty"`
	CompletedAt          *time.Time     `db:"completed_at"          json:"completed_at,omitempty"`
	LastAccessedAt       time.Time      `db:"last_accessed_at"      json:"last_accessed_at"`
	CreatedAt            time.Time      `db:"created_at"            json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"            json:"updated_at"`
}

type Company struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Symbol    string    `db:"symbol"     json:"symbol"`
	Name      string    `db:"name"       json:"name"`
	Industry  string    `db:"industry"   json:"industry"`
	Sector    string    `db:"sector"     json:"sector"`
	MarketCap float64   `db:"market_cap" json:"market_cap"`
	Exchange  string    `db:"exchange"   json:"exchange"`
	Country   string    `db:"country"    json:"country"`
	Currency  string    `db:"currency"   json:"currency"`
	Website   string    `db:"website"    json:"website"`
	Logo      string    `db:"logo"       json:"logo"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CompanyFundamentals struct {
	Symbol       string    `db:"symbol"         json:"symbol"`
	PERatio      float64   `db:"pe_ratio"       json:"pe_ratio"`
	EPS          float64   `db:"eps"            json:"eps"`
	ROE          float64   `db:"roe"            json:"roe"`
	DebtToEquity float64   `db:"debt_to_equity" json:"debt_to_equity"`
	ProfitMargin float64   `db:"profit_margin"  json:"profit_margin"`
	RevenueTTM   float64   `db:"revenue_ttm"    json:"revenue_ttm"`
	UpdatedAt    time.Time `db:"updated_at"     json:"updated_at"`
}

// CompanyQuote is a row of the cached market-data snapshot. Prices only move
// when the loader refreshes the snapshot; the simulator trades against these.
type CompanyQuote struct {
	Symbol        string    `db:"symbol"         json:"symbol"`
	Price         float64   `db:"price"          json:"price"`
	Change        float64   `db:"change"         json:"change"`
	PercentChange float64   `db:"percent_change" json:"percent_change"`
	High          float64   `db:"high"           json:"high"`
	Low           float64   `db:"low"            json:"low"`
	Open          float64   `db:"open"           json:"open"`
	PrevClose     float64   `db:"prev_close"     json:"prev_close"`
	UpdatedAt     time.Time `db:"updated_at"     json:"updated_at"`
}

type CompanyFinancials struct {
	ID               int64   `db:"id"                json:"id"`
	Symbol           string  `db:"symbol"            json:"symbol"`
	Year             int     `db:"year"              json:"year"`
	Revenue          float64 `db:"revenue"           json:"revenue"`
	NetIncome        float64 `db:"net_income"        json:"net_income"`
	TotalAssets      float64 `db:"total_assets"      json:"total_assets"`
	TotalLiabilities float64 `db:"total_liabilities" json:"total_liabilities"`
}

// Mock10K carries the narrative sections students analyze in written answers
// and pitches. Content is synthetic, loaded alongside the snapshot.
type Mock10K struct {
	Symbol              string `db:"symbol"               json:"symbol"`
	BusinessDescription string `db:"business_description" json:"business_description"`
	RiskFactors         string `db:"risk_factors"         json:"risk_factors"`
}

// QuoteTick is the message published on redis when a snapshot quote changes.
type QuoteTick struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	PercentChange float64   `json:"percent_change"`
	Timestamp     time.Time `json:"timestamp"`
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/yourorg/vesto-server/internal/domain"
)

// CompanyRepo serves the cached market-data snapshot: company profiles,
// fundamentals, quotes, annual financials and mock 10-K narratives. Rows are
// written by the snapshot loader and read by the simulator endpoints.
type CompanyRepo struct {
	db *sqlx.DB
}

func NewCompanyRepo(db *sqlx.DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

func (r *CompanyRepo) GetAll(ctx context.Context) ([]domain.Company, error) {
	var companies []domain.Company
	err := r.db.SelectContext(ctx, &companies, `SELECT * FROM companies ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *CompanyRepo) GetBySymbol(ctx context.Context, symbol string) (*domain.Company, error) {
	var c domain.Company
	err := r.db.GetContext(ctx, &c, `SELECT * FROM companies WHERE symbol = $1`, symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepo) GetFundamentals(ctx context.Context, symbol string) (*domain.CompanyFundamentals, error) {
	var f domain.CompanyFundamentals
	err := r.db.GetContext(ctx, &f, `SELECT * FROM company_fundamentals WHERE symbol = $1`, symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *CompanyRepo) GetQuote(ctx context.Context, symbol string) (*domain.CompanyQuote, error) {
	var q domain.CompanyQuote
	err := r.db.GetContext(ctx, &q, `SELECT * FROM company_quotes WHERE symbol = $1`, symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *CompanyRepo) GetFinancials(ctx context.Context, symbol string) ([]domain.CompanyFinancials, error) {
	var rows []domain.CompanyFinancials
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM company_financials WHERE symbol = $1 ORDER BY year DESC`, symbol)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CompanyRepo) GetMock10K(ctx context.Context, symbol string) (*domain.Mock10K, error) {
	var m domain.Mock10K
	err := r.db.GetContext(ctx, &m, `SELECT * FROM mock_10k_narratives WHERE symbol = $1`, symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *CompanyRepo) UpsertCompany(ctx context.Context, c *domain.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `
		INSERT INTO companies (id, symbol, name, industry, sector, market_cap,
		                       exchange, country, currency, website, logo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (symbol) DO UPDATE SET
			name       = EXCLUDED.name,
			industry   = EXCLUDED.industry,
			sector     = EXCLUDED.sector,
			market_cap = EXCLUDED.market_cap,
			exchange   = EXCLUDED.exchange,
			country    = EXCLUDED.country,
			currency   = EXCLUDED.currency,
			website    = EXCLUDED.website,
			logo       = EXCLUDED.logo,
			updated_at = NOW()
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		c.ID, c.Symbol, c.Name, c.Industry, c.Sector, c.MarketCap,
		c.Exchange, c.Country, c.Currency, c.Website, c.Logo).
		Scan(&c.ID)
}

func (r *CompanyRepo) UpsertFundamentals(ctx context.Context, f *domain.CompanyFundamentals) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO company_fundamentals (symbol, pe_ratio, eps, roe, debt_to_equity, profit_margin, revenue_ttm)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol) DO UPDATE SET
			pe_ratio       = EXCLUDED.pe_ratio,
			eps            = EXCLUDED.eps,
			roe            = EXCLUDED.roe,
			debt_to_equity = EXCLUDED.debt_to_equity,
			profit_margin  = EXCLUDED.profit_margin,
			revenue_ttm    = EXCLUDED.revenue_ttm,
			updated_at     = NOW()`,
		f.Symbol, f.PERatio, f.EPS, f.ROE, f.DebtToEquity, f.ProfitMargin, f.RevenueTTM)
	return err
}

func (r *CompanyRepo) UpsertQuote(ctx context.Context, q *domain.CompanyQuote) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO company_quotes (symbol, price, change, percent_change, high, low, open, prev_close)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol) DO UPDATE SET
			price          = EXCLUDED.price,
			change         = EXCLUDED.change,
			percent_change = EXCLUDED.percent_change,
			high           = EXCLUDED.high,
			low            = EXCLUDED.low,
			open           = EXCLUDED.open,
			prev_close     = EXCLUDED.prev_close,
			updated_at     = NOW()`,
		q.Symbol, q.Price, q.Change, q.PercentChange, q.High, q.Low, q.Open, q.PrevClose)
	return err
}

// ReplaceFinancials swaps the full annual-financials history for a symbol.
func (r *CompanyRepo) ReplaceFinancials(ctx context.Context, symbol string, rows []domain.CompanyFinancials) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM company_financials WHERE symbol = $1`, symbol); err != nil {
		return err
	}
	for _, f := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO company_financials (symbol, year, revenue, net_income, total_assets, total_liabilities)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			symbol, f.Year, f.Revenue, f.NetIncome, f.TotalAssets, f.TotalLiabilities)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *CompanyRepo) UpsertMock10K(ctx context.Context, m *domain.Mock10K) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mock_10k_narratives (symbol, business_description, risk_factors)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol) DO UPDATE SET
			business_description = EXCLUDED.business_description,
			risk_factors         = EXCLUDED.risk_factors`,
		m.Symbol, m.BusinessDescription, m.RiskFactors)
	return err
}

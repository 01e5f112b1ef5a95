package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/vesto-server/internal/domain"
	pgRepo "github.com/yourorg/vesto-server/internal/repository/postgres"
	redisRepo "github.com/yourorg/vesto-server/internal/repository/redis"
)

// snapshotFile mirrors the extracted market-data JSON: one entry per company,
// keyed by symbol, with nested provider sections.
type snapshotFile struct {
	ExtractedAt string                     `json:"extracted_at"`
	Companies   map[string]snapshotCompany `json:"companies"`
}

type snapshotCompany struct {
	Symbol       string                `json:"symbol"`
	Name         string                `json:"name"`
	Profile      *snapshotProfile      `json:"profile"`
	Fundamentals *snapshotFundamentals `json:"fundamentals"`
	Quote        *snapshotQuote        `json:"quote"`
	Financials   *snapshotFinancials   `json:"financials"`
	Mock10K      *snapshotMock10K      `json:"mock_10k"`
}

type snapshotProfile struct {
	Industry  string  `json:"industry"`
	Sector    string  `json:"sector"`
	MarketCap float64 `json:"marketCap"`
	Exchange  string  `json:"exchange"`
	Country   string  `json:"country"`
	Currency  string  `json:"currency"`
	Website   string  `json:"website"`
	Logo      string  `json:"logo"`
}

type snapshotFundamentals struct {
	Valuation struct {
		PERatio float64 `json:"peRatio"`
	} `json:"valuation"`
	Profitability struct {
		ROE             float64 `json:"roe"`
		NetProfitMargin float64 `json:"netProfitMargin"`
		EPS             float64 `json:"epsTTM"`
	} `json:"profitability"`
	Leverage struct {
		DebtToEquity float64 `json:"debtToEquity"`
	} `json:"leverage"`
	Market struct {
		RevenueTTM float64 `json:"revenueTTM"`
	} `json:"market"`
}

type snapshotQuote struct {
	CurrentPrice  float64 `json:"currentPrice"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percentChange"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	PreviousClose float64 `json:"previousClose"`
}

type snapshotFinancials struct {
	Reports []snapshotReport `json:"reports"`
}

type snapshotReport struct {
	Year            int `json:"year"`
	IncomeStatement struct {
		Revenue   float64 `json:"revenue"`
		NetIncome float64 `json:"netIncome"`
	} `json:"incomeStatement"`
	BalanceSheet struct {
		TotalAssets      float64 `json:"totalAssets"`
		TotalLiabilities float64 `json:"totalLiabilities"`
	} `json:"balanceSheet"`
}

type snapshotMock10K struct {
	BusinessDescription string `json:"businessDescription"`
	RiskFactors         string `json:"riskFactors"`
}

func main() {
	_ = godotenv.Load()

	path := flag.String("file", "vesto_snapshot.json", "path to the market-data snapshot JSON")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	raw, err := os.ReadFile(*path)
	if err != nil {
		logger.Error("failed to read snapshot file", "path", *path, "err", err)
		os.Exit(1)
	}
	var snapshot snapshotFile
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		logger.Error("failed to parse snapshot file", "path", *path, "err", err)
		os.Exit(1)
	}
	logger.Info("snapshot parsed", "companies", len(snapshot.Companies), "extracted_at", snapshot.ExtractedAt)

	db, err := pgRepo.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	if err := pgRepo.RunMigrations(os.Getenv("DATABASE_URL"), "migrations"); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}
	redisClient, err := redisRepo.Connect(os.Getenv("REDIS_URL"))
	if err != nil {
		logger.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}

	companyRepo := pgRepo.NewCompanyRepo(db)
	quoteRepo := redisRepo.NewQuoteRepo(redisClient)

	ctx := context.Background()
	loaded, failed := 0, 0
	for symbol, entry := range snapshot.Companies {
		if err := loadCompany(ctx, companyRepo, quoteRepo, symbol, entry); err != nil {
			logger.Error("failed to load company", "symbol", symbol, "err", err)
			failed++
			continue
		}
		logger.Info("company loaded", "symbol", symbol)
		loaded++
	}

	if err := quoteRepo.InvalidateSnapshot(ctx); err != nil {
		logger.Warn("failed to invalidate snapshot cache", "err", err)
	}

	logger.Info("load complete", "loaded", loaded, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadCompany(ctx context.Context, companies *pgRepo.CompanyRepo, quotes *redisRepo.QuoteRepo, symbol string, entry snapshotCompany) error {
	company := &domain.Company{Symbol: symbol, Name: entry.Name}
	if p := entry.Profile; p != nil {
		company.Industry = p.Industry
		company.Sector = p.Sector
		company.MarketCap = p.MarketCap
		company.Exchange = p.Exchange
		company.Country = p.Country
		company.Currency = p.Currency
		company.Website = p.Website
		company.Logo = p.Logo
	}
	if err := companies.UpsertCompany(ctx, company); err != nil {
		return err
	}

	if f := entry.Fundamentals; f != nil {
		err := companies.UpsertFundamentals(ctx, &domain.CompanyFundamentals{
			Symbol:       symbol,
			PERatio:      f.Valuation.PERatio,
			EPS:          f.Profitability.EPS,
			ROE:          f.Profitability.ROE,
			DebtToEquity: f.Leverage.DebtToEquity,
			ProfitMargin: f.Profitability.NetProfitMargin,
			RevenueTTM:   f.Market.RevenueTTM,
		})
		if err != nil {
			return err
		}
	}

	if q := entry.Quote; q != nil && q.CurrentPrice > 0 {
		err := companies.UpsertQuote(ctx, &domain.CompanyQuote{
			Symbol:        symbol,
			Price:         q.CurrentPrice,
			Change:        q.Change,
			PercentChange: q.PercentChange,
			High:          q.High,
			Low:           q.Low,
			Open:          q.Open,
			PrevClose:     q.PreviousClose,
		})
		if err != nil {
			return err
		}
		err = quotes.Publish(ctx, domain.QuoteTick{
			Symbol:        symbol,
			Price:         q.CurrentPrice,
			Change:        q.Change,
			PercentChange: q.PercentChange,
			Timestamp:     time.Now().UTC(),
		})
		if err != nil {
			return err
		}
	}

	if fin := entry.Financials; fin != nil && len(fin.Reports) > 0 {
		rows := make([]domain.CompanyFinancials, 0, len(fin.Reports))
		for _, report := range fin.Reports {
			rows = append(rows, domain.CompanyFinancials{
				Symbol:           symbol,
				Year:             report.Year,
				Revenue:          report.IncomeStatement.Revenue,
				NetIncome:        report.IncomeStatement.NetIncome,
				TotalAssets:      report.BalanceSheet.TotalAssets,
				TotalLiabilities: report.BalanceSheet.TotalLiabilities,
			})
		}
		if err := companies.ReplaceFinancials(ctx, symbol, rows); err != nil {
			return err
		}
	}

	if m := entry.Mock10K; m != nil {
		err := companies.UpsertMock10K(ctx, &domain.Mock10K{
			Symbol:              symbol,
			BusinessDescription: m.BusinessDescription,
			RiskFactors:         m.RiskFactors,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourorg/vesto-server/internal/domain"
)

const snapshotCacheTTL = 5 * time.Minute

// companyData bundles everything the simulator needs for one company so the
// client fetches the whole snapshot in a single request.
type companyData struct {
	Company      domain.Company              `json:"company"`
	Fundamentals *domain.CompanyFundamentals `json:"fundamentals"`
	Quote        *domain.CompanyQuote        `json:"quote"`
	Mock10K      *domain.Mock10K             `json:"mock10k"`
	Financials   []domain.CompanyFinancials  `json:"financials"`
}

func (h *Handlers) GetCompaniesAllData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cached, err := h.quotes.GetCachedSnapshot(ctx); err == nil && cached != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	}

	companies, err := h.companies.GetAll(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch company data", err.Error())
		return
	}

	results := make([]companyData, len(companies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, company := range companies {
		g.Go(func() error {
			cd := companyData{Company: company, Financials: []domain.CompanyFinancials{}}
			cd.Fundamentals, _ = h.companies.GetFundamentals(gctx, company.Symbol)
			cd.Quote, _ = h.companies.GetQuote(gctx, company.Symbol)
			cd.Mock10K, _ = h.companies.GetMock10K(gctx, company.Symbol)
			if financials, err := h.companies.GetFinancials(gctx, company.Symbol); err == nil && financials != nil {
				cd.Financials = financials
			}
			results[i] = cd
			return nil
		})
	}
	g.Wait()

	body, err := json.Marshal(map[string]any{"data": results})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch company data", err.Error())
		return
	}
	if err := h.quotes.CacheSnapshot(ctx, body, snapshotCacheTTL); err != nil {
		h.logger.Warn("failed to cache company snapshot", "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

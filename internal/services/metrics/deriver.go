// Package metrics derives per-fiscal-year ratio panels from raw
// financial statements.
package metrics

import (
	"math"

	"github.com/bobmcallan/equitas/internal/models"
)

const million = 1e6

// Derive converts aligned statement lists into a panel of actual-year
// metrics, one row per aligned position. Statements are most-recent-year
// first; positions beyond the shortest list are ignored. Rows are never
// dropped once their three source statements exist, even when every
// field computes to zero.
//
// Margins, growth rates and returns follow the zero-denominator policy:
// computed only when the denominator is strictly positive, otherwise 0.
// Valuation ratios need market.MarketCap and are nil without it.
func Derive(ticker string, stmts *models.StatementSet, market models.MarketInputs) *models.MetricsPanel {
	panel := models.NewMetricsPanel(ticker)

	numYears := stmts.AlignedYears()
	for i := 0; i < numYears; i++ {
		income := stmts.Income[i]
		balance := stmts.Balance[i]
		cashflow := stmts.CashFlow[i]

		year := income.Year()
		if year == "" {
			continue
		}

		revenue := income.Revenue
		adjEBITDA := income.EBITDA
		adjEBIT := income.OperatingEBIT()
		adjNetIncome := income.NetIncome

		cfo := cashflow.OperatingCashFlow
		capex := math.Abs(cashflow.CapitalExpenditure)
		fcff := cfo - capex

		totalDebt := balance.TotalDebt
		cash := balance.CashAndCashEquivalents
		netDebt := totalDebt - cash
		totalEquity := balance.TotalStockholdersEquity
		totalAssets := balance.TotalAssets

		incomeTax := math.Abs(income.IncomeTaxExpense)
		interestExpense := math.Abs(income.InterestExpense)

		row := &models.FiscalYearMetrics{
			Revenue:      revenue / million,
			AdjEBITDA:    adjEBITDA / million,
			AdjEBIT:      adjEBIT / million,
			AdjNetIncome: adjNetIncome / million,
			CFO:          cfo / million,
			FCFF:         fcff / million,
		}

		if adjNetIncome+incomeTax > 0 {
			row.AdjTaxRate = incomeTax / (adjNetIncome + incomeTax) * 100
		}

		if revenue > 0 {
			row.NetMargin = adjNetIncome / revenue * 100
			row.EBITDAMargin = adjEBITDA / revenue * 100
			row.EBITMargin = adjEBIT / revenue * 100
		}

		shares := sharesForEPS(market)
		if shares > 0 {
			row.AdjEPS = adjNetIncome / shares
		}

		// Growth compares against the prior year within the same window;
		// the most-historic year always reports 0% growth.
		if i < numYears-1 {
			prev := stmts.Income[i+1]
			if prev.Revenue > 0 {
				row.RevenueGrowth = (revenue - prev.Revenue) / prev.Revenue * 100
			}
			if prev.EBITDA > 0 {
				row.EBITDAGrowth = (adjEBITDA - prev.EBITDA) / prev.EBITDA * 100
			}
			if shares > 0 {
				prevEPS := prev.NetIncome / shares
				if prevEPS > 0 {
					row.AdjEPSGrowth = (row.AdjEPS - prevEPS) / prevEPS * 100
				}
			}
		}

		if interestExpense > 0 {
			row.InterestCover = models.Float64Ptr(adjEBIT / interestExpense)
		}
		if totalEquity > 0 {
			row.NetDebtToEquity = models.Float64Ptr(netDebt / totalEquity * 100)
		}
		if adjEBITDA > 0 {
			row.NetDebtToEBITDA = models.Float64Ptr(netDebt / adjEBITDA)
		}

		if totalAssets-cash > 0 {
			row.ROCE = adjEBIT / (totalAssets - cash) * 100
		}
		if totalEquity > 0 {
			row.ROE = adjNetIncome / totalEquity * 100
		}

		// Valuation ratios exist only with market data: nil distinguishes
		// "not computable" from "computed as zero".
		if market.MarketCap > 0 {
			ev := market.MarketCap + netDebt
			if ev > 0 {
				row.FCFFYield = models.Float64Ptr(fcff / ev * 100)
			}
			if adjEBITDA > 0 {
				row.EVToEBITDA = models.Float64Ptr(ev / adjEBITDA)
			}
			if revenue > 0 {
				row.EVToRevenue = models.Float64Ptr(ev / revenue)
			}
			if market.CurrentPrice > 0 && row.AdjEPS > 0 {
				row.AdjPE = models.Float64Ptr(market.CurrentPrice / row.AdjEPS)
			}
		}

		panel.Metrics[year] = row
	}

	return panel
}

// sharesForEPS prefers supplied shares outstanding, deriving from market
// cap and price when absent. Returns 0 when neither path is available —
// EPS becomes 0, never an error.
func sharesForEPS(market models.MarketInputs) float64 {
	if market.SharesOutstanding > 0 {
		return market.SharesOutstanding
	}
	if market.MarketCap > 0 && market.CurrentPrice > 0 {
		return market.MarketCap / market.CurrentPrice
	}
	return 0
}

// CarryForward synthesizes a forecast row from the most recent known
// year: absolute values, margins and ratios are carried unchanged,
// growth rates are zeroed (no-growth assumption). This is the
// deterministic fallback when the forecast capability is unavailable.
func CarryForward(prev *models.FiscalYearMetrics) *models.FiscalYearMetrics {
	row := &models.FiscalYearMetrics{
		Revenue:      prev.Revenue,
		AdjEBITDA:    prev.AdjEBITDA,
		AdjEBIT:      prev.AdjEBIT,
		AdjNetIncome: prev.AdjNetIncome,
		NetMargin:    prev.NetMargin,
		AdjEPS:       prev.AdjEPS,
		CFO:          prev.CFO,
		FCFF:         prev.FCFF,
		EBITDAMargin: prev.EBITDAMargin,
		EBITMargin:   prev.EBITMargin,
		AdjTaxRate:   prev.AdjTaxRate,
		ROCE:         prev.ROCE,
		ROE:          prev.ROE,
		Source:       models.MetricSourceFallback,
	}
	row.InterestCover = copyPtr(prev.InterestCover)
	row.NetDebtToEquity = copyPtr(prev.NetDebtToEquity)
	row.NetDebtToEBITDA = copyPtr(prev.NetDebtToEBITDA)
	row.FCFFYield = copyPtr(prev.FCFFYield)
	row.DividendYield = copyPtr(prev.DividendYield)
	row.EVToEBITDA = copyPtr(prev.EVToEBITDA)
	row.EVToRevenue = copyPtr(prev.EVToRevenue)
	row.AdjPE = copyPtr(prev.AdjPE)
	return row
}

func copyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return models.Float64Ptr(*v)
}

package forecast

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/equitas/internal/models"
)

// buildForecastPrompt renders the generation prompt for one target
// fiscal year: actual years newest-first, already-generated forecast
// years oldest-first so the chain reads forward, then company context,
// then the required output contract.
func buildForecastPrompt(ticker, targetYear string, panel *models.MetricsPanel, latestActual string, snapshot *models.CompanySnapshot, priceReturn float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a financial analyst. Forecast fiscal year %s metrics for %s.\n\n", targetYear, ticker)

	actuals := panel.ActualYears(latestActual)
	if len(actuals) > 0 {
		b.WriteString("Historical actuals (most recent first, currency in millions):\n")
		for i := len(actuals) - 1; i >= 0; i-- {
			writeYearLine(&b, actuals[i], panel.Metrics[actuals[i]])
		}
		b.WriteString("\n")
	}

	if forecasts := panel.ForecastYears(latestActual); len(forecasts) > 0 {
		b.WriteString("Already forecast (oldest first):\n")
		for _, year := range forecasts {
			if year == targetYear {
				continue
			}
			writeYearLine(&b, year, panel.Metrics[year])
		}
		b.WriteString("\n")
	}

	if snapshot != nil {
		b.WriteString("Company context:\n")
		if snapshot.MarketCap != nil {
			fmt.Fprintf(&b, "- Market cap: %.0f %s\n", *snapshot.MarketCap, snapshot.Currency)
		}
		if snapshot.ConsensusRating != "" {
			fmt.Fprintf(&b, "- Analyst consensus: %s (%d analysts)\n", snapshot.ConsensusRating, snapshot.NumAnalysts)
		}
		if snapshot.Volatility90D != nil {
			fmt.Fprintf(&b, "- 90-day volatility: %.1f%%\n", *snapshot.Volatility90D)
		}
		b.WriteString("\n")
	}
	if priceReturn != 0 {
		fmt.Fprintf(&b, "Share price total return over the analysis window: %+.1f%%\n\n", priceReturn)
	}

	fmt.Fprintf(&b, `Respond with a single JSON object for fiscal year %s and nothing else. Required keys:
revenue, adj_ebitda, adj_ebit, adj_net_income, net_margin, adj_eps, cfo, fcff,
revenue_growth, ebitda_margin, ebitda_growth, ebit_margin, adj_eps_growth, adj_tax_rate,
interest_cover, net_debt_equity, net_debt_ebitda, roce, roe,
fcff_yield, dividend_yield, ev_ebitda, ev_revenue, adj_pe.
Currency values in millions. Percentages as plain numbers (15.2 means 15.2%%).
Use null for any ratio you cannot estimate. No markdown, no commentary.
`, targetYear)

	return b.String()
}

func writeYearLine(b *strings.Builder, year string, row *models.FiscalYearMetrics) {
	if row == nil {
		return
	}
	fmt.Fprintf(b, "- FY%s: revenue %.1f, EBITDA %.1f (%.1f%%), EBIT %.1f, net income %.1f, EPS %.2f, CFO %.1f, FCFF %.1f, revenue growth %.1f%%\n",
		year, row.Revenue, row.AdjEBITDA, row.EBITDAMargin, row.AdjEBIT, row.AdjNetIncome, row.AdjEPS, row.CFO, row.FCFF, row.RevenueGrowth)
}

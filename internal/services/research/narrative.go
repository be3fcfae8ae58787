package research

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/equitas/internal/models"
)

// buildNarrativePrompt renders the assembled report data into a prompt
// for the narrative capability. Forecast years are presented the same
// way actual years are; provenance stays internal.
func buildNarrativePrompt(report *models.EquityReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an equity research analyst. Write a concise research narrative for %s.\n\n", report.Ticker)

	if s := report.Snapshot; s != nil {
		b.WriteString("Company facts:\n")
		if s.MarketCap != nil {
			fmt.Fprintf(&b, "- Market cap: %.0f %s\n", *s.MarketCap, s.Currency)
		}
		if s.Volatility90D != nil {
			fmt.Fprintf(&b, "- 90-day volatility: %.1f%%\n", *s.Volatility90D)
		}
		if s.High52W != nil && s.Low52W != nil {
			fmt.Fprintf(&b, "- 52-week range: %.2f - %.2f\n", *s.Low52W, *s.High52W)
		}
		if s.ConsensusRating != "" {
			fmt.Fprintf(&b, "- Analyst consensus: %s (%d analysts)\n", s.ConsensusRating, s.NumAnalysts)
		}
		b.WriteString("\n")
	}

	if p := report.PricePerformance; p != nil {
		fmt.Fprintf(&b, "Price performance %s to %s: %+.1f%% (vs benchmark %s)\n\n",
			p.StartDate, p.EndDate, p.TotalReturn(), p.BaseIndex)
	}

	if panel := report.Panel; panel != nil {
		b.WriteString("Key metrics by fiscal year (currency in millions):\n")
		for _, year := range panel.Years() {
			row := panel.Metrics[year]
			fmt.Fprintf(&b, "- FY%s: revenue %.0f, EBITDA %.0f (%.1f%% margin), net income %.0f, EPS %.2f, revenue growth %.1f%%\n",
				year, row.Revenue, row.AdjEBITDA, row.EBITDAMargin, row.AdjNetIncome, row.AdjEPS, row.RevenueGrowth)
		}
		b.WriteString("\n")
	}

	if report.News != nil {
		if recent := report.News.Recent(10); len(recent) > 0 {
			b.WriteString("Recent headlines:\n")
			for _, article := range recent {
				fmt.Fprintf(&b, "- [%s] %s\n", article.Source, article.Headline)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("Cover financial trajectory, profitability, balance sheet posture and valuation in 3-4 paragraphs. Plain prose, no markdown headers.\n")
	return b.String()
}

// Package render produces the PDF rendition of an assembled report.
package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/bobmcallan/equitas/internal/common"
	"github.com/bobmcallan/equitas/internal/models"
)

// Service renders equity reports to PDF bytes.
type Service struct {
	logger *common.Logger
}

// NewService creates a new render service.
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// RenderPDF lays out the report: header, snapshot facts, the metrics
// panel by fiscal year, the performance chart when provided, then the
// narrative. Forecast years render in the same table as actual years.
func (s *Service) RenderPDF(report *models.EquityReport, chartPNG []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 9, fmt.Sprintf("%s Equity Research", report.Ticker), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s | latest actual FY%s",
		report.GeneratedAt.Format("2 Jan 2006"), report.LatestActualYear), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	if report.Snapshot != nil {
		s.renderSnapshot(pdf, report.Snapshot)
	}
	if report.Panel != nil && len(report.Panel.Metrics) > 0 {
		s.renderPanel(pdf, report.Panel, report.LatestActualYear)
	}
	if len(chartPNG) > 0 {
		s.renderChart(pdf, chartPNG)
	}
	if report.Narrative != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 7, "Analyst View", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, report.Narrative, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}

	s.logger.Debug().Str("ticker", report.Ticker).Int("pdf_bytes", buf.Len()).Msg("Report PDF rendered")
	return buf.Bytes(), nil
}

func (s *Service) renderSnapshot(pdf *fpdf.Fpdf, snap *models.CompanySnapshot) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, "Company Snapshot", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)

	fact := func(label, value string) {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(50, 5, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, value, "", 1, "L", false, 0, "")
	}

	if snap.MarketCap != nil {
		fact("Market cap", fmt.Sprintf("%.0fM %s", *snap.MarketCap/1e6, snap.Currency))
	}
	if snap.SharesOutstanding != nil {
		fact("Shares outstanding", fmt.Sprintf("%.1fM", *snap.SharesOutstanding/1e6))
	}
	if snap.High52W != nil && snap.Low52W != nil {
		fact("52-week range", fmt.Sprintf("%.2f - %.2f", *snap.Low52W, *snap.High52W))
	}
	if snap.Volatility90D != nil {
		fact("Volatility (90d)", fmt.Sprintf("%.1f%%", *snap.Volatility90D))
	}
	if snap.AvgVolume3MShares != nil {
		fact("Avg daily volume (3m)", fmt.Sprintf("%.2fM shares", *snap.AvgVolume3MShares/1e6))
	}
	if snap.FreeFloatPct != nil {
		fact("Free float", fmt.Sprintf("%.1f%%", *snap.FreeFloatPct))
	}
	if snap.ConsensusRating != "" {
		fact("Analyst consensus", fmt.Sprintf("%s (%d analysts)", snap.ConsensusRating, snap.NumAnalysts))
	}
	pdf.Ln(3)
}

func (s *Service) renderPanel(pdf *fpdf.Fpdf, panel *models.MetricsPanel, latestActual string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, "Key Metrics", "", 1, "L", false, 0, "")

	years := panel.Years()
	labelWidth := 42.0
	colWidth := (186.0 - labelWidth) / float64(len(years))
	if colWidth > 28 {
		colWidth = 28
	}

	header := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(labelWidth, 5, "", "1", 0, "L", true, 0, "")
		for _, year := range years {
			label := "FY" + year
			if year > latestActual {
				label += "E"
			}
			pdf.CellFormat(colWidth, 5, label, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	row := func(label string, value func(*models.FiscalYearMetrics) string) {
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(labelWidth, 5, label, "1", 0, "L", false, 0, "")
		for _, year := range years {
			pdf.CellFormat(colWidth, 5, value(panel.Metrics[year]), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	millions := func(v float64) string { return fmt.Sprintf("%.1f", v) }
	pct := func(v float64) string { return fmt.Sprintf("%.1f%%", v) }
	ratio := func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.1fx", *v)
	}

	header()
	row("Revenue (M)", func(m *models.FiscalYearMetrics) string { return millions(m.Revenue) })
	row("Revenue growth", func(m *models.FiscalYearMetrics) string { return pct(m.RevenueGrowth) })
	row("EBITDA (M)", func(m *models.FiscalYearMetrics) string { return millions(m.AdjEBITDA) })
	row("EBITDA margin", func(m *models.FiscalYearMetrics) string { return pct(m.EBITDAMargin) })
	row("EBIT (M)", func(m *models.FiscalYearMetrics) string { return millions(m.AdjEBIT) })
	row("Net income (M)", func(m *models.FiscalYearMetrics) string { return millions(m.AdjNetIncome) })
	row("Net margin", func(m *models.FiscalYearMetrics) string { return pct(m.NetMargin) })
	row("EPS", func(m *models.FiscalYearMetrics) string { return fmt.Sprintf("%.2f", m.AdjEPS) })
	row("CFO (M)", func(m *models.FiscalYearMetrics) string { return millions(m.CFO) })
	row("FCFF (M)", func(m *models.FiscalYearMetrics) string { return millions(m.FCFF) })
	row("ROE", func(m *models.FiscalYearMetrics) string { return pct(m.ROE) })
	row("ROCE", func(m *models.FiscalYearMetrics) string { return pct(m.ROCE) })
	row("Net debt / EBITDA", func(m *models.FiscalYearMetrics) string { return ratio(m.NetDebtToEBITDA) })
	row("EV / EBITDA", func(m *models.FiscalYearMetrics) string { return ratio(m.EVToEBITDA) })
	row("P/E", func(m *models.FiscalYearMetrics) string { return ratio(m.AdjPE) })
	pdf.Ln(3)
}

func (s *Service) renderChart(pdf *fpdf.Fpdf, chartPNG []byte) {
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, "Price Performance", "", 1, "L", false, 0, "")

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("performance_chart", opts, bytes.NewReader(chartPNG))
	pdf.ImageOptions("performance_chart", 12, pdf.GetY(), 186, 0, true, opts, 0, "")
}

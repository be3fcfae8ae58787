package research

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/equitas/internal/models"
)

// renderPerformanceChart renders the rebased subject vs benchmark series
// as a PNG line chart. Two series: the subject (blue solid) and the
// benchmark (gray dashed), both indexed to 100 at the window start.
func renderPerformanceChart(series *models.PricePerformanceSeries) ([]byte, error) {
	if len(series.StockData) < 2 || len(series.IndexData) < 2 {
		return nil, fmt.Errorf("need at least 2 points per series, got %d/%d",
			len(series.StockData), len(series.IndexData))
	}

	stockX, stockY, err := chartValues(series.StockData)
	if err != nil {
		return nil, err
	}
	indexX, indexY, err := chartValues(series.IndexData)
	if err != nil {
		return nil, err
	}

	stockSeries := chart.TimeSeries{
		Name: series.Ticker,
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: stockX,
		YValues: stockY,
	}

	indexSeries := chart.TimeSeries{
		Name: series.BaseIndex,
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: indexX,
		YValues: indexY,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s vs %s (rebased to 100)", series.Ticker, series.BaseIndex),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			stockSeries,
			indexSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

func chartValues(points []models.PricePoint) ([]time.Time, []float64, error) {
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		t, err := time.Parse(dateLayout, p.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("bad series date %q: %w", p.Date, err)
		}
		xs[i] = t
		ys[i] = p.RebasedClose
	}
	return xs, ys, nil
}

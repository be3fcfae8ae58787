package research

import (
	"math"
	"sort"

	"github.com/bobmcallan/equitas/internal/models"
)

// rebaseSeries sorts bars ascending by date and indexes closes to 100 at
// the first observation. Each series is rebased on its own first close,
// independently of any other series. Bars with a non-positive first
// close produce an empty result.
func rebaseSeries(bars []models.PriceBar) []models.PricePoint {
	if len(bars) == 0 {
		return nil
	}

	sorted := make([]models.PriceBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	base := sorted[0].Close
	if base <= 0 {
		return nil
	}

	points := make([]models.PricePoint, 0, len(sorted))
	for _, bar := range sorted {
		points = append(points, models.PricePoint{
			Date:         bar.Date,
			Close:        bar.Close,
			RebasedClose: bar.Close / base * 100,
		})
	}
	return points
}

// volatility90D computes the standard deviation of daily returns over
// the last 90 bars, as a percentage. The provider's changePercent is
// preferred; when absent the return is computed from consecutive
// closes. Fewer than two usable returns yields 0.
func volatility90D(bars []models.PriceBar) float64 {
	if len(bars) == 0 {
		return 0
	}

	sorted := make([]models.PriceBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	if len(sorted) > 90 {
		sorted = sorted[len(sorted)-90:]
	}

	var returns []float64
	for i, bar := range sorted {
		switch {
		case bar.ChangePercent != 0:
			returns = append(returns, bar.ChangePercent/100)
		case i > 0 && sorted[i-1].Close > 0:
			returns = append(returns, (bar.Close-sorted[i-1].Close)/sorted[i-1].Close)
		}
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * 100
}

// avgDailyVolume returns the mean share volume over the last n bars.
func avgDailyVolume(bars []models.PriceBar, n int) float64 {
	if len(bars) == 0 {
		return 0
	}

	sorted := make([]models.PriceBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}

	var sum float64
	for _, bar := range sorted {
		sum += bar.Volume
	}
	return sum / float64(len(sorted))
}

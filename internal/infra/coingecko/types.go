package coingecko

import (
	"time"

	"crypto_dash/internal/domain"
)

// marketChartResponse is the body of /coins/{id}/market_chart.
// Each entry of Prices is [timestampMillis, price].
type marketChartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

func (r *marketChartResponse) toPoints() []domain.PricePoint {
	points := make([]domain.PricePoint, 0, len(r.Prices))
	for _, p := range r.Prices {
		points = append(points, domain.PricePoint{
			Timestamp: time.UnixMilli(int64(p[0])).UTC(),
			Price:     p[1],
		})
	}
	return points
}

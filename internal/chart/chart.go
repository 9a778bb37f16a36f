// Package chart derives plot-ready series from coin data.
package chart

import (
	"sort"
	"strings"
	"time"

	"crypto_dash/internal/domain"
)

const (
	// MarketCapSlices is how many coins the market-cap distribution shows.
	MarketCapSlices = 10
	// ChangeBars is how many coins the 24h change chart shows.
	ChangeBars = 15
)

// Palette is cycled through for market-cap slices.
var Palette = []string{
	"#3B82F6", "#8B5CF6", "#10B981", "#F59E0B", "#EF4444",
	"#06B6D4", "#84CC16", "#F97316", "#EC4899", "#6366F1",
}

// Slice is one segment of the market-cap distribution.
type Slice struct {
	Name     string  `json:"name"`
	FullName string  `json:"full_name"`
	Value    float64 `json:"value"`
	Share    float64 `json:"share"` // fraction of the plotted total, 0..1
	Color    string  `json:"color"`
}

// Bar is one entry of the 24h change chart.
type Bar struct {
	Name     string  `json:"name"`
	FullName string  `json:"full_name"`
	Change   float64 `json:"change"`
	Positive bool    `json:"positive"`
}

// Point is one sample of a price history line.
type Point struct {
	Date      string    `json:"date"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Series groups the dashboard charts.
type Series struct {
	MarketCap   []Slice `json:"market_cap"`
	PriceChange []Bar   `json:"price_change"`
}

// Build derives both dashboard charts from coins.
func Build(coins []domain.CoinRecord) Series {
	return Series{
		MarketCap:   MarketCapShares(coins),
		PriceChange: PriceChangeBars(coins),
	}
}

// MarketCapShares returns the distribution of the first MarketCapSlices coins.
func MarketCapShares(coins []domain.CoinRecord) []Slice {
	coins = head(coins, MarketCapSlices)

	var total float64
	for _, c := range coins {
		total += c.MarketCap
	}

	out := make([]Slice, len(coins))
	for i, c := range coins {
		var share float64
		if total > 0 {
			share = c.MarketCap / total
		}
		out[i] = Slice{
			Name:     strings.ToUpper(c.Symbol),
			FullName: c.Name,
			Value:    c.MarketCap,
			Share:    share,
			Color:    Palette[i%len(Palette)],
		}
	}
	return out
}

// PriceChangeBars returns the first ChangeBars coins ordered by 24h change,
// highest first. The input is not reordered.
func PriceChangeBars(coins []domain.CoinRecord) []Bar {
	coins = head(coins, ChangeBars)

	out := make([]Bar, len(coins))
	for i, c := range coins {
		out[i] = Bar{
			Name:     strings.ToUpper(c.Symbol),
			FullName: c.Name,
			Change:   c.PriceChangePercentage24h,
			Positive: c.IsGaining(),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Change > out[j].Change
	})
	return out
}

// PriceHistory converts feed samples to a dated series.
func PriceHistory(points []domain.PricePoint) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{
			Date:      p.Timestamp.UTC().Format(time.DateOnly),
			Price:     p.Price,
			Timestamp: p.Timestamp,
		}
	}
	return out
}

// Range is the extent of a price history.
type Range struct {
	Min, Max, First, Last float64
}

// Change returns the percentage move from First to Last, 0 if First is 0.
func (r Range) Change() float64 {
	if r.First == 0 {
		return 0
	}
	return (r.Last - r.First) / r.First * 100
}

// HistoryRange summarises points; ok is false when points is empty.
func HistoryRange(points []Point) (r Range, ok bool) {
	if len(points) == 0 {
		return Range{}, false
	}
	r = Range{
		Min:   points[0].Price,
		Max:   points[0].Price,
		First: points[0].Price,
		Last:  points[len(points)-1].Price,
	}
	for _, p := range points[1:] {
		r.Min = min(r.Min, p.Price)
		r.Max = max(r.Max, p.Price)
	}
	return r, true
}

func head(coins []domain.CoinRecord, n int) []domain.CoinRecord {
	if len(coins) > n {
		return coins[:n]
	}
	return coins
}

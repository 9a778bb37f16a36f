// Package summary aggregates market-wide statistics over a coin list.
package summary

import (
	"sort"

	"crypto_dash/internal/domain"
)

// Snapshot is a derived, point-in-time aggregate.
// BiggestGainer and BiggestLoser are nil for an empty list.
type Snapshot struct {
	TotalMarketCap float64            `json:"total_market_cap"`
	AverageChange  float64            `json:"average_change"`
	CoinCount      int                `json:"coin_count"`
	BiggestGainer  *domain.CoinRecord `json:"biggest_gainer"`
	BiggestLoser   *domain.CoinRecord `json:"biggest_loser"`
}

// Compute aggregates coins. The input is not modified.
//
// Gainer and loser come from a stable descending sort by 24h change, so
// among equal changes the gainer is the earliest coin in input order and
// the loser the latest.
func Compute(coins []domain.CoinRecord) Snapshot {
	if len(coins) == 0 {
		return Snapshot{}
	}

	var totalCap, totalChange float64
	for _, c := range coins {
		totalCap += c.MarketCap
		totalChange += c.PriceChangePercentage24h
	}

	sorted := make([]domain.CoinRecord, len(coins))
	copy(sorted, coins)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriceChangePercentage24h > sorted[j].PriceChangePercentage24h
	})

	gainer := sorted[0]
	loser := sorted[len(sorted)-1]

	return Snapshot{
		TotalMarketCap: totalCap,
		AverageChange:  totalChange / float64(len(coins)),
		CoinCount:      len(coins),
		BiggestGainer:  &gainer,
		BiggestLoser:   &loser,
	}
}

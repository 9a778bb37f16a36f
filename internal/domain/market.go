package domain

import "time"

// MarketState is a point-in-time copy of the fetcher's state.
// Coins is never mutated after being handed out.
type MarketState struct {
	Coins       []CoinRecord `json:"coins"`
	Loading     bool         `json:"loading"`
	Error       string       `json:"error,omitempty"`
	LastUpdated time.Time    `json:"last_updated"`
}

// HasError reports whether the last accepted fetch failed.
func (s MarketState) HasError() bool {
	return s.Error != ""
}

// Package dashboard composes the market state, filter criteria, summary and
// chart series into a single view.
package dashboard

import (
	"sync"
	"time"

	"crypto_dash/internal/chart"
	"crypto_dash/internal/domain"
	"crypto_dash/internal/filter"
	"crypto_dash/internal/summary"
)

// MarketReader provides the current market state
type MarketReader interface {
	State() domain.MarketState
}

// View is everything the dashboard renders at one instant.
type View struct {
	Coins       []domain.CoinRecord `json:"coins"`
	Filtered    []domain.CoinRecord `json:"filtered"`
	Summary     summary.Snapshot    `json:"summary"`
	Bounds      filter.PriceRange   `json:"bounds"`
	Criteria    filter.Criteria     `json:"criteria"`
	Charts      chart.Series        `json:"charts"`
	Loading     bool                `json:"loading"`
	Error       string              `json:"error,omitempty"`
	LastUpdated time.Time           `json:"last_updated"`
}

// Dashboard owns the filter criteria. Safe for concurrent use.
type Dashboard struct {
	market MarketReader

	mu     sync.Mutex
	engine *filter.Engine
}

// New creates a dashboard over market with default criteria.
func New(market MarketReader) *Dashboard {
	return &Dashboard{market: market, engine: filter.NewEngine()}
}

// View derives the current view. The summary covers the full list while the
// charts follow the filtered list.
func (d *Dashboard) View() View {
	state := d.market.State()

	d.mu.Lock()
	d.engine.Observe(state.Coins)
	criteria := d.engine.Criteria()
	d.mu.Unlock()

	filtered := filter.Apply(state.Coins, criteria)

	return View{
		Coins:       state.Coins,
		Filtered:    filtered,
		Summary:     summary.Compute(state.Coins),
		Bounds:      filter.Bounds(state.Coins),
		Criteria:    criteria,
		Charts:      chart.Build(filtered),
		Loading:     state.Loading,
		Error:       state.Error,
		LastUpdated: state.LastUpdated,
	}
}

// Criteria returns the current criteria.
func (d *Dashboard) Criteria() filter.Criteria {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.Criteria()
}

// UpdateFilters merges p into the criteria and returns the result.
// Coins already loaded are observed first so that the data-derived range
// is in place before the user's bounds are applied.
func (d *Dashboard) UpdateFilters(p filter.Patch) filter.Criteria {
	state := d.market.State()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.Observe(state.Coins)
	return d.engine.Update(p)
}

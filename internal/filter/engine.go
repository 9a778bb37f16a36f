package filter

import "crypto_dash/internal/domain"

// Patch is a partial criteria update; nil fields keep their value.
type Patch struct {
	Search   *string  `json:"search,omitempty"`
	Bucket   *Bucket  `json:"bucket,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
}

// Engine holds the current criteria. It is not safe for concurrent use.
type Engine struct {
	criteria Criteria
	// autoRange is set until the price range is derived from data or the
	// user moves the upper bound, whichever happens first.
	autoRange bool
	// minSet records a user lower bound, kept when the range is derived.
	minSet bool
}

// NewEngine returns an engine with DefaultCriteria.
func NewEngine() *Engine {
	return &Engine{criteria: DefaultCriteria(), autoRange: true}
}

// Criteria returns the current criteria.
func (e *Engine) Criteria() Criteria {
	return e.criteria
}

// AutoRangePending reports whether the one-time price expansion is still due.
func (e *Engine) AutoRangePending() bool {
	return e.autoRange
}

// Update merges p into the current criteria. Min is applied before max.
func (e *Engine) Update(p Patch) Criteria {
	if p.Search != nil {
		e.criteria.Search = *p.Search
	}
	if p.Bucket != nil {
		e.criteria.Bucket = *p.Bucket
	}
	if p.MinPrice != nil {
		e.SetMinPrice(*p.MinPrice)
	}
	if p.MaxPrice != nil {
		e.SetMaxPrice(*p.MaxPrice)
	}
	return e.criteria
}

// SetMinPrice sets the lower bound, raising the upper bound to match if crossed.
// The one-time expansion stays pending unless the upper bound moved.
func (e *Engine) SetMinPrice(v float64) {
	e.minSet = true
	e.criteria.Price.Min = v
	if e.criteria.Price.Max < v {
		e.criteria.Price.Max = v
		e.autoRange = false
	}
}

// SetMaxPrice sets the upper bound, lowering the lower bound to match if crossed.
func (e *Engine) SetMaxPrice(v float64) {
	e.autoRange = false
	e.criteria.Price.Max = v
	if e.criteria.Price.Min > v {
		e.criteria.Price.Min = v
	}
}

// Observe replaces the price range with the data bounds the first time a
// non-empty list is seen. A lower bound set by the user is kept.
// It reports whether the range changed.
func (e *Engine) Observe(coins []domain.CoinRecord) bool {
	if !e.autoRange || len(coins) == 0 {
		return false
	}
	e.autoRange = false

	bounds := Bounds(coins)
	if e.minSet {
		bounds.Min = min(e.criteria.Price.Min, bounds.Max)
	}
	e.criteria.Price = bounds
	return true
}

// Apply filters coins with the current criteria.
func (e *Engine) Apply(coins []domain.CoinRecord) []domain.CoinRecord {
	return Apply(coins, e.criteria)
}

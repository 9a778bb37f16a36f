// Package filter derives the visible coin list from the market listing and
// user criteria.
package filter

import (
	"math"
	"strings"

	"crypto_dash/internal/domain"
)

// Bucket is a market-cap rank range.
type Bucket string

const (
	BucketAll    Bucket = "all"
	BucketTop10  Bucket = "top10"
	Bucket11To25 Bucket = "11-25"
	Bucket26To50 Bucket = "26-50"
)

// Buckets lists every recognised bucket in display order.
var Buckets = []Bucket{BucketAll, BucketTop10, Bucket11To25, Bucket26To50}

// ParseBucket accepts a bucket name; empty means all.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BucketAll, nil
	case BucketAll, BucketTop10, Bucket11To25, Bucket26To50:
		return b, nil
	default:
		return "", domain.ErrInvalidBucket
	}
}

// Contains reports whether rank falls in the bucket.
// Unrecognised buckets match everything.
func (b Bucket) Contains(rank int) bool {
	switch b {
	case BucketTop10:
		return rank <= 10
	case Bucket11To25:
		return rank >= 11 && rank <= 25
	case Bucket26To50:
		return rank >= 26 && rank <= 50
	default:
		return true
	}
}

// Label returns the human readable name.
func (b Bucket) Label() string {
	switch b {
	case BucketTop10:
		return "Top 10"
	case Bucket11To25:
		return "Rank 11-25"
	case Bucket26To50:
		return "Rank 26-50"
	default:
		return "All"
	}
}

// Initial price range before any data is observed.
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 100000
)

// PriceRange is a closed interval [Min, Max].
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies in the range, both ends inclusive.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Criteria is the user-controlled filter state.
type Criteria struct {
	Search string     `json:"search"`
	Bucket Bucket     `json:"bucket"`
	Price  PriceRange `json:"price"`
}

// DefaultCriteria returns the wide-open initial criteria.
func DefaultCriteria() Criteria {
	return Criteria{
		Bucket: BucketAll,
		Price:  PriceRange{Min: DefaultMinPrice, Max: DefaultMaxPrice},
	}
}

// Matches reports whether coin passes the search, bucket and price predicates.
func Matches(coin domain.CoinRecord, c Criteria) bool {
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(coin.Name), q) &&
			!strings.Contains(strings.ToLower(coin.Symbol), q) {
			return false
		}
	}
	if !c.Bucket.Contains(coin.MarketCapRank) {
		return false
	}
	return c.Price.Contains(coin.CurrentPrice)
}

// Apply returns the matching coins in input order. The input is not modified.
func Apply(coins []domain.CoinRecord, c Criteria) []domain.CoinRecord {
	out := make([]domain.CoinRecord, 0, len(coins))
	for _, coin := range coins {
		if Matches(coin, c) {
			out = append(out, coin)
		}
	}
	return out
}

// Bounds returns floor(min price) and ceil(max price) across coins,
// or the default range when coins is empty.
func Bounds(coins []domain.CoinRecord) PriceRange {
	if len(coins) == 0 {
		return PriceRange{Min: DefaultMinPrice, Max: DefaultMaxPrice}
	}
	lo, hi := coins[0].CurrentPrice, coins[0].CurrentPrice
	for _, coin := range coins[1:] {
		lo = math.Min(lo, coin.CurrentPrice)
		hi = math.Max(hi, coin.CurrentPrice)
	}
	return PriceRange{Min: math.Floor(lo), Max: math.Ceil(hi)}
}

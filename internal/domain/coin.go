package domain

import "time"

// CoinRecord is one market snapshot for a single asset, as returned by the
// markets listing.
type CoinRecord struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	MarketCapRank            int     `json:"market_cap_rank"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	TotalVolume              float64 `json:"total_volume"`
	High24h                  float64 `json:"high_24h"`
	Low24h                   float64 `json:"low_24h"`
}

// ChangeDirection returns "positive", "negative", or "neutral"
func (c CoinRecord) ChangeDirection() string {
	switch {
	case c.PriceChangePercentage24h > 0:
		return "positive"
	case c.PriceChangePercentage24h < 0:
		return "negative"
	default:
		return "neutral"
	}
}

// IsGaining reports whether the coin is rendered as gaining (change >= 0).
func (c CoinRecord) IsGaining() bool {
	return c.PriceChangePercentage24h >= 0
}

// USDValue wraps the feed's {"usd": x} objects.
type USDValue struct {
	USD float64 `json:"usd"`
}

// USDDate wraps the feed's {"usd": "2021-11-10T14:24:11.849Z"} objects.
type USDDate struct {
	USD string `json:"usd"`
}

// CoinDetail is the single coin object consumed by the detail view.
type CoinDetail struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank int    `json:"market_cap_rank"`
	Description   struct {
		En string `json:"en"`
	} `json:"description"`
	Image struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	MarketData  CoinMarketData `json:"market_data"`
	Links       CoinLinks      `json:"links"`
	LastUpdated string         `json:"last_updated"`
}

// CoinMarketData is the nested market_data block of a coin detail.
type CoinMarketData struct {
	CurrentPrice             USDValue `json:"current_price"`
	MarketCap                USDValue `json:"market_cap"`
	TotalVolume              USDValue `json:"total_volume"`
	High24h                  USDValue `json:"high_24h"`
	Low24h                   USDValue `json:"low_24h"`
	PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
	ATH                      USDValue `json:"ath"`
	ATHDate                  USDDate  `json:"ath_date"`
	ATL                      USDValue `json:"atl"`
	ATLDate                  USDDate  `json:"atl_date"`
	CirculatingSupply        float64  `json:"circulating_supply"`
	MaxSupply                *float64 `json:"max_supply"` // null for uncapped assets
}

// CoinLinks holds external links of a coin.
type CoinLinks struct {
	Homepage []string `json:"homepage"`
}

// Homepage returns the first non-empty homepage link, if any.
func (d *CoinDetail) Homepage() string {
	for _, h := range d.Links.Homepage {
		if h != "" {
			return h
		}
	}
	return ""
}

// PricePoint is a single sample of a coin's price history.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

package domain

import (
	"context"
)

// MarketSource defines the market-data feed consumed by the services
type MarketSource interface {
	// FetchMarkets returns the first page of the markets listing, ordered by the feed.
	FetchMarkets(ctx context.Context) ([]CoinRecord, error)
	// FetchCoinDetail returns the detail object for a single coin.
	FetchCoinDetail(ctx context.Context, id string) (*CoinDetail, error)
	// FetchMarketChart returns the price history of a coin over the given number of days.
	FetchMarketChart(ctx context.Context, id string, days int) ([]PricePoint, error)
}

// AssetRepository defines how asset metadata is persisted
type AssetRepository interface {
	GetAsset(id string) (*AssetInfo, error)
	UpsertAsset(asset *AssetInfo) error
}

package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"crypto_dash/internal/domain"
)

// DefaultHistoryDays is the price-history window of the detail view.
const DefaultHistoryDays = 7

// DetailState is the outcome of loading a single coin.
// Coin is nil when the detail could not be fetched.
type DetailState struct {
	Coin         *domain.CoinDetail  `json:"coin"`
	History      []domain.PricePoint `json:"history"`
	Error        string              `json:"error,omitempty"`
	HistoryError string              `json:"history_error,omitempty"`
}

// Found reports whether the detail was loaded.
func (d DetailState) Found() bool {
	return d.Coin != nil
}

// CoinDetailService loads a coin's detail and its price history.
type CoinDetailService struct {
	source domain.MarketSource
	days   int
}

// NewCoinDetailService creates a detail loader; days <= 0 uses DefaultHistoryDays.
func NewCoinDetailService(source domain.MarketSource, days int) *CoinDetailService {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	return &CoinDetailService{source: source, days: days}
}

// Load fetches detail and history concurrently. A history failure never fails
// the detail.
func (s *CoinDetailService) Load(ctx context.Context, id string) DetailState {
	if id == "" {
		return DetailState{Error: domain.ErrEmptyCoinID.Error()}
	}

	var (
		state   DetailState
		history []domain.PricePoint
		histErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		coin, err := s.source.FetchCoinDetail(gctx, id)
		if err != nil {
			return err
		}
		state.Coin = coin
		return nil
	})
	g.Go(func() error {
		// Swallowed so that a chart failure does not cancel the detail request
		history, histErr = s.source.FetchMarketChart(gctx, id, s.days)
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Error fetching coin detail", slog.String("id", id), slog.Any("error", err))
		return DetailState{Error: err.Error()}
	}

	if histErr != nil {
		slog.Warn("Error fetching price history", slog.String("id", id), slog.Any("error", histErr))
		state.HistoryError = histErr.Error()
	} else {
		state.History = history
	}
	return state
}

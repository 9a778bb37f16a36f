package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"crypto_dash/internal/domain"
	"crypto_dash/internal/engine"
	"crypto_dash/internal/infra"
)

// DefaultRefreshInterval is the auto-refresh period of the markets listing.
const DefaultRefreshInterval = 60 * time.Second

// Option configures a MarketService
type Option func(*MarketService)

// WithRefreshInterval overrides the polling period
func WithRefreshInterval(d time.Duration) Option {
	return func(s *MarketService) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithOnChange registers a callback invoked after every applied fetch,
// successful or not. It runs outside the service lock.
func WithOnChange(fn func(domain.MarketState)) Option {
	return func(s *MarketService) { s.onChange = fn }
}

// WithMetrics records fetch counters into m
func WithMetrics(m *infra.Metrics) Option {
	return func(s *MarketService) { s.metrics = m }
}

// WithClock overrides time.Now (for testing)
func WithClock(now func() time.Time) Option {
	return func(s *MarketService) { s.now = now }
}

// MarketService owns the coin list and keeps it fresh.
type MarketService struct {
	source   domain.MarketSource
	seq      *engine.Sequencer
	interval time.Duration
	onChange func(domain.MarketState)
	metrics  *infra.Metrics
	now      func() time.Time

	mu          sync.RWMutex
	coins       []domain.CoinRecord
	errMsg      string
	lastUpdated time.Time
	inFlight    int

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewMarketService creates a new MarketService instance
func NewMarketService(source domain.MarketSource, opts ...Option) *MarketService {
	s := &MarketService{
		source:   source,
		seq:      engine.NewSequencer(),
		interval: DefaultRefreshInterval,
		metrics:  infra.GlobalMetrics,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins polling until Stop is called or ctx is cancelled. The initial
// fetch runs in the polling goroutine, so Start does not block on the feed.
func (s *MarketService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.seq.Closed() {
		s.mu.Unlock()
		return
	}
	// Create a cancellable context
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	s.mu.Unlock()

	// Start polling goroutine
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Market data polling panic recovered", slog.Any("panic", r))
			}
		}()

		// Fetch immediately on start
		if err := s.fetch(ctx); err != nil {
			slog.Warn("Initial market data fetch failed", slog.Any("error", err))
			// Continue anyway - will retry on next tick
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Market data polling stopped")
				return
			case <-ticker.C:
				if err := s.fetch(ctx); err != nil {
					slog.Warn("Market data fetch failed", slog.Any("error", err))
				}
			}
		}
	}()
}

// Refetch performs the same fetch on demand. Overlapping calls are allowed;
// only the newest completion is applied.
func (s *MarketService) Refetch(ctx context.Context) error {
	return s.fetch(ctx)
}

// Stop cancels periodic refresh and rejects completions still in flight.
func (s *MarketService) Stop() {
	s.stopOnce.Do(func() {
		s.seq.Close()

		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		s.wg.Wait()
	})
}

// State returns a copy of the current state
func (s *MarketService) State() domain.MarketState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Coins returns the current coin list
func (s *MarketService) Coins() []domain.CoinRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.coins)
}

// Must be called with lock held
func (s *MarketService) stateLocked() domain.MarketState {
	return domain.MarketState{
		Coins:       slices.Clone(s.coins),
		Loading:     s.inFlight > 0,
		Error:       s.errMsg,
		LastUpdated: s.lastUpdated,
	}
}

func (s *MarketService) fetch(ctx context.Context) error {
	if s.seq.Closed() {
		return domain.ErrStopped
	}
	gen := s.seq.Next()

	s.mu.Lock()
	s.inFlight++
	s.errMsg = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	start := time.Now()
	s.metrics.FetchStarted()
	coins, err := s.source.FetchMarkets(ctx)
	s.metrics.FetchFinished(time.Since(start), err)

	if err != nil {
		slog.Error("Error fetching market data", slog.Uint64("generation", gen), slog.Any("error", err))
	}

	if !s.seq.Accept(gen) {
		s.metrics.RecordStale()
		slog.Debug("Discarding stale market data", slog.Uint64("generation", gen), slog.Uint64("latest", s.seq.Latest()))
		return err
	}

	s.mu.Lock()
	if err != nil {
		// Keep the previous coins: stale data beats no data
		s.errMsg = err.Error()
	} else {
		s.coins = coins
		s.errMsg = ""
		s.lastUpdated = s.now()
	}
	state := s.stateLocked()
	s.mu.Unlock()

	if err == nil {
		slog.Info("Market data updated", slog.Int("coins", len(coins)), slog.Uint64("generation", gen))
	}
	if s.onChange != nil {
		s.onChange(state)
	}
	return err
}

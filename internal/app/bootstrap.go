package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"crypto_dash/internal/domain"
	"crypto_dash/internal/infra"
	"crypto_dash/internal/infra/coingecko"
	"crypto_dash/internal/infra/storage"
	"crypto_dash/internal/service"
)

// syncConcurrency limits parallel icon downloads.
const syncConcurrency = 5

// IconFetcher downloads a coin thumbnail and returns its local path
type IconFetcher interface {
	DownloadIcon(ctx context.Context, coinID, imageURL string) (string, error)
}

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	ConfigPath string

	Config  *infra.Config
	Source  domain.MarketSource
	Metrics *infra.Metrics

	// Asset cache; nil when assets are disabled
	Assets domain.AssetRepository
	Icons  IconFetcher
	store  *storage.Storage
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap(configPath string) *Bootstrap {
	if configPath == "" {
		configPath = infra.DefaultConfigPath
	}
	return &Bootstrap{ConfigPath: configPath, Metrics: infra.GlobalMetrics}
}

// Initialize performs core system initialization (config, logger, feed client, asset cache)
func (b *Bootstrap) Initialize() error {
	// 1. Load Config
	cfg, err := infra.LoadConfig(b.ConfigPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	slog.SetDefault(infra.NewLogger(cfg))
	slog.Info("🚀 Bootstrapping Crypto Dash...", slog.String("config", b.ConfigPath))

	// 3. Market data client
	cg := cfg.API.CoinGecko
	b.Source = coingecko.NewClient(coingecko.Options{
		BaseURL:    cg.BaseURL,
		APIKey:     cg.APIKey,
		VsCurrency: cg.VsCurrency,
		PerPage:    cg.PerPage,
		Timeout:    cfg.Timeout(),
		RetryCount: cg.RetryCount,
		UserAgent:  infra.DefaultUserAgent,
	})
	if cg.APIKey == "" {
		slog.Warn("No CoinGecko API key configured; requests may be rate limited")
	}
	slog.Info("✅ CoinGecko client ready", slog.String("base_url", cg.BaseURL))

	// 4. Asset cache (DB + icons)
	if !cfg.Assets.Enabled {
		return nil
	}
	return b.initAssets()
}

func (b *Bootstrap) initAssets() error {
	dir := b.Config.Assets.Dir
	if dir == "" {
		var err error
		if dir, err = infra.AppDataDir(); err != nil {
			return err
		}
	}

	store, err := storage.NewStorage(storage.DefaultDBPath(dir))
	if err != nil {
		return err
	}
	b.store = store
	b.Assets = store
	slog.Info("✅ Database initialized")

	downloader, err := infra.NewIconDownloaderAt(filepath.Join(dir, "assets", "icons"), b.Config.Assets.IconPx)
	if err != nil {
		return err
	}
	b.Icons = downloader
	slog.Info("✅ Icon downloader ready")
	return nil
}

// NewMarketService builds the fetcher with the configured refresh interval.
func (b *Bootstrap) NewMarketService(opts ...service.Option) *service.MarketService {
	base := []service.Option{
		service.WithRefreshInterval(b.Config.RefreshInterval()),
		service.WithMetrics(b.Metrics),
	}
	return service.NewMarketService(b.Source, append(base, opts...)...)
}

// NewDetailService builds the coin detail loader.
func (b *Bootstrap) NewDetailService() *service.CoinDetailService {
	return service.NewCoinDetailService(b.Source, b.Config.API.CoinGecko.HistoryDays)
}

// SyncAssets records coins in the asset registry and downloads missing icons
// in the background. It is a no-op when assets are disabled.
func (b *Bootstrap) SyncAssets(ctx context.Context, coins []domain.CoinRecord) {
	if b.Assets == nil || b.Icons == nil || len(coins) == 0 {
		return
	}
	slog.Info("🔄 Starting asset synchronization...", slog.Int("coins", len(coins)))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, syncConcurrency) // Limit concurrent downloads

	for _, coin := range coins {
		wg.Add(1)
		go func(c domain.CoinRecord) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			b.syncOne(ctx, c)
		}(coin)
	}

	wg.Wait()
	slog.Info("✨ Asset synchronization completed")
}

func (b *Bootstrap) syncOne(ctx context.Context, c domain.CoinRecord) {
	asset := &domain.AssetInfo{
		ID:       c.ID,
		Symbol:   c.Symbol,
		Name:     c.Name,
		ImageURL: c.Image,
	}

	existing, err := b.Assets.GetAsset(c.ID)
	if err != nil {
		slog.Error("Failed to read asset", slog.String("id", c.ID), slog.Any("error", err))
	}
	needsIcon := true
	if existing != nil {
		needsIcon = existing.NeedsIcon(c.Image)
		asset.IconPath = existing.IconPath
		asset.LastSyncedAt = existing.LastSyncedAt
		asset.CreatedAt = existing.CreatedAt
	}

	if needsIcon && c.Image != "" {
		path, err := b.Icons.DownloadIcon(ctx, c.ID, c.Image)
		if err != nil {
			slog.Warn("Failed to download icon", slog.String("id", c.ID), slog.Any("error", err))
		} else {
			asset.IconPath = path
			asset.LastSyncedAt = time.Now()
		}
	}

	if err := b.Assets.UpsertAsset(asset); err != nil {
		slog.Error("Failed to upsert asset", slog.String("id", c.ID), slog.Any("error", err))
	}
}

// Close releases the asset database.
func (b *Bootstrap) Close() error {
	if b.store == nil {
		return nil
	}
	return b.store.Close()
}

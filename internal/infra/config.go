package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"crypto_dash/internal/domain"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	DefaultConfigPath = "configs/config.yaml"
)

// Config는 애플리케이션의 모든 설정을 담습니다.
// LoadConfig로 로드된 후에 환경 변수를 통해 민감 내용을 덮어씁니다.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		CoinGecko struct {
			BaseURL            string `yaml:"base_url"`
			APIKey             string `yaml:"api_key"`
			VsCurrency         string `yaml:"vs_currency"`
			PerPage            int    `yaml:"per_page"`
			RefreshIntervalSec int    `yaml:"refresh_interval_sec"`
			TimeoutSec         int    `yaml:"timeout_sec"`
			RetryCount         int    `yaml:"retry_count"`
			HistoryDays        int    `yaml:"history_days"`
		} `yaml:"coingecko"`
	} `yaml:"api"`

	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Assets struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir"`     // empty: <user config dir>/CryptoDash
		IconPx  int    `yaml:"icon_px"` // thumbnail edge in pixels
	} `yaml:"assets"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadConfig는 설정 파일을 읽고 파싱합니다.
// A missing file is not an error: defaults plus environment overrides are used.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// run with defaults
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyDefaults()

	// 4원칙: 보안 우선 - 환경 변수 오버라이드 지원
	overrideWithEnv(&cfg)

	// 5원칙: 설정 유효성 검사
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "crypto-dash"
	}
	cg := &c.API.CoinGecko
	if cg.BaseURL == "" {
		cg.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cg.VsCurrency == "" {
		cg.VsCurrency = "usd"
	}
	if cg.PerPage == 0 {
		cg.PerPage = 50
	}
	if cg.RefreshIntervalSec == 0 {
		cg.RefreshIntervalSec = 60
	}
	if cg.TimeoutSec == 0 {
		cg.TimeoutSec = 10
	}
	if cg.HistoryDays == 0 {
		cg.HistoryDays = 7
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "localhost:8080"
	}
	if c.Assets.IconPx == 0 {
		c.Assets.IconPx = 24
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "logs"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	cg := c.API.CoinGecko
	if !strings.HasPrefix(cg.BaseURL, "http://") && !strings.HasPrefix(cg.BaseURL, "https://") {
		return &domain.ConfigError{Field: "api.coingecko.base_url", Err: fmt.Errorf("invalid URL: %q", cg.BaseURL)}
	}
	if cg.PerPage <= 0 || cg.PerPage > 250 {
		return &domain.ConfigError{Field: "api.coingecko.per_page", Err: fmt.Errorf("must be in 1..250, got %d", cg.PerPage)}
	}
	if cg.RefreshIntervalSec <= 0 {
		return &domain.ConfigError{Field: "api.coingecko.refresh_interval_sec", Err: errors.New("refresh interval must be positive")}
	}
	if cg.TimeoutSec < 0 || cg.RetryCount < 0 {
		return &domain.ConfigError{Field: "api.coingecko", Err: errors.New("timeout and retry count must not be negative")}
	}
	if cg.HistoryDays <= 0 {
		return &domain.ConfigError{Field: "api.coingecko.history_days", Err: errors.New("history days must be positive")}
	}
	if c.Assets.IconPx <= 0 {
		return &domain.ConfigError{Field: "assets.icon_px", Err: errors.New("icon size must be positive")}
	}
	return nil
}

// RefreshInterval returns the polling period of the markets listing.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.API.CoinGecko.RefreshIntervalSec) * time.Second
}

// Timeout returns the HTTP timeout for feed requests.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.CoinGecko.TimeoutSec) * time.Second
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("CRYPTO_COINGECKO_API_KEY"); key != "" {
		cfg.API.CoinGecko.APIKey = key
	}
	if url := os.Getenv("CRYPTO_COINGECKO_URL"); url != "" {
		cfg.API.CoinGecko.BaseURL = url
	}
	if addr := os.Getenv("CRYPTO_SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if level := os.Getenv("CRYPTO_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

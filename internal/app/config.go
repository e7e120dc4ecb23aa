package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "shopbot/core/config"
	coredatabase "shopbot/core/database"
)

const (
	// CatalogSourceYAML serves the catalog from a static YAML file.
	CatalogSourceYAML = "yaml"
	// CatalogSourcePostgres serves the catalog from Postgres, seeded from
	// the YAML file on first run.
	CatalogSourcePostgres = "postgres"
)

const (
	defaultCatalogFile        = "configs/catalog.yaml"
	defaultUSDTWallet         = "TYJgFhJQqXZJXJXJXJXJXJXJXJXJX"
	defaultSessionMaxIdleH    = 24
	defaultJanitorIntervalMin = 60
)

// ShopConfig holds shop-specific settings.
type ShopConfig struct {
	USDTWallet    string `yaml:"usdt_wallet" envconfig:"SHOP_USDT_WALLET"`
	CatalogSource string `yaml:"catalog_source" envconfig:"SHOP_CATALOG_SOURCE"`
	CatalogFile   string `yaml:"catalog_file" envconfig:"SHOP_CATALOG_FILE"`
	// SessionMaxIdleHours bounds idle session retention; 0 -> default,
	// negative disables eviction.
	SessionMaxIdleHours    int `yaml:"session_max_idle_hours" envconfig:"SHOP_SESSION_MAX_IDLE_HOURS"`
	JanitorIntervalMinutes int `yaml:"janitor_interval_minutes" envconfig:"SHOP_JANITOR_INTERVAL_MINUTES"`
}

// Config aggregates core and shop configuration loaded from one file.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Shop     ShopConfig          `yaml:"shop"`
	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// LoadConfigFile reads configuration from a YAML file and the environment.
func LoadConfigFile(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalizeShop(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeShop(cfg *Config) error {
	if cfg.Core.Telegram.AdminID == 0 {
		return fmt.Errorf("telegram.admin_id is required")
	}

	if strings.TrimSpace(cfg.Shop.USDTWallet) == "" {
		cfg.Shop.USDTWallet = defaultUSDTWallet
	}
	if strings.TrimSpace(cfg.Shop.CatalogFile) == "" {
		cfg.Shop.CatalogFile = defaultCatalogFile
	}

	src := strings.ToLower(strings.TrimSpace(cfg.Shop.CatalogSource))
	if src == "" {
		src = CatalogSourceYAML
	}
	switch src {
	case CatalogSourceYAML:
	case CatalogSourcePostgres:
		if strings.TrimSpace(cfg.Database.Host) == "" {
			return fmt.Errorf("database.host is required when shop.catalog_source is 'postgres'")
		}
	default:
		return fmt.Errorf("invalid shop.catalog_source %q; allowed: yaml, postgres", cfg.Shop.CatalogSource)
	}
	cfg.Shop.CatalogSource = src

	if cfg.Shop.SessionMaxIdleHours == 0 {
		cfg.Shop.SessionMaxIdleHours = defaultSessionMaxIdleH
	}
	if cfg.Shop.JanitorIntervalMinutes <= 0 {
		cfg.Shop.JanitorIntervalMinutes = defaultJanitorIntervalMin
	}
	return nil
}

// Package config loads the engine's configuration from a YAML file, an
// optional .env overlay, and environment-variable overrides, in that
// order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the engine's full runtime configuration.
type Config struct {
	Scheduling SchedulingConfig `yaml:"scheduling"`
	Economics  EconomicsConfig  `yaml:"economics"`
	Execution  ExecutionConfig  `yaml:"execution"`
	Risk       RiskConfig       `yaml:"risk"`
	API        APIConfig        `yaml:"api"`
	Storage    StorageConfig    `yaml:"storage"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Log        LogConfig        `yaml:"log"`
}

// SchedulingConfig controls the main loop's cadence.
type SchedulingConfig struct {
	ScanIntervalSeconds    int `yaml:"scan_interval_seconds"`
	SummaryIntervalSeconds int `yaml:"summary_interval_seconds"`
}

func (s SchedulingConfig) ScanInterval() time.Duration {
	return time.Duration(s.ScanIntervalSeconds) * time.Second
}

func (s SchedulingConfig) SummaryInterval() time.Duration {
	return time.Duration(s.SummaryIntervalSeconds) * time.Second
}

// EconomicsConfig gates which opportunities are worth alerting on.
type EconomicsConfig struct {
	MinProfitPerDollar float64 `yaml:"min_profit_per_dollar"`
	PolyFee            float64 `yaml:"poly_fee"`
	MinEventVolume24h  float64 `yaml:"min_event_volume_24h"`
	RealertThreshold   float64 `yaml:"realert_threshold"`
}

// ExecutionConfig controls whether and how the engine trades.
type ExecutionConfig struct {
	AutoTrade   bool    `yaml:"auto_trade"`
	TradeBudget float64 `yaml:"trade_budget"`
	Bankroll    float64 `yaml:"bankroll"`
	MaxSpread   float64 `yaml:"max_spread"`
	MinDepthUSD float64 `yaml:"min_depth_usd"`
}

// RiskConfig holds the kill-switch thresholds.
type RiskConfig struct {
	PartialFillStreak int     `yaml:"kill_partial_fill_streak"`
	PartialFillDay    int     `yaml:"kill_partial_fill_day"`
	APIErrors10m      int     `yaml:"kill_api_errors_10m"`
	LatencyMS         float64 `yaml:"kill_latency_ms"`
	LatencyWindowSec  int     `yaml:"kill_latency_window_sec"`
	ThinBookStreak    int     `yaml:"kill_thin_book_scans"`
	MaxTradesPerHour  int     `yaml:"kill_max_trades_per_hour"`
	MaxExposurePct    float64 `yaml:"kill_max_exposure_pct"`
}

func (r RiskConfig) LatencyWindow() time.Duration {
	return time.Duration(r.LatencyWindowSec) * time.Second
}

// APIConfig holds the venue base URLs and wallet signing identity.
type APIConfig struct {
	CLOBBase      string `yaml:"clob_base"`
	GammaBase     string `yaml:"gamma_base"`
	PolygonRPCURL string `yaml:"polygon_rpc_url"`
	// WalletPrivateKeyHex is read from env only (POLY_PRIVATE_KEY),
	// never from YAML, never logged.
	WalletPrivateKeyHex string `yaml:"-"`
}

// StorageConfig controls where events are persisted.
type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

// TelegramConfig holds the notification sink's credentials. Token is
// env-only, same secrecy rule as the wallet key.
type TelegramConfig struct {
	Token   string   `yaml:"-"`
	ChatIDs []string `yaml:"chat_ids"`
}

// LogConfig controls logging format and verbosity.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads path as YAML, overlays an optional .env file, applies
// environment-variable overrides, and fills in defaults for anything
// still unset.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	envInt(&cfg.Scheduling.ScanIntervalSeconds, "SCAN_INTERVAL")
	envInt(&cfg.Scheduling.SummaryIntervalSeconds, "SUMMARY_INTERVAL")

	envFloat(&cfg.Economics.MinProfitPerDollar, "MIN_PROFIT_PER_DOLLAR")
	envFloat(&cfg.Economics.PolyFee, "POLY_FEE")
	envFloat(&cfg.Economics.MinEventVolume24h, "MIN_EVENT_VOLUME_24H")
	envFloat(&cfg.Economics.RealertThreshold, "REALERT_THRESHOLD")

	envBool(&cfg.Execution.AutoTrade, "AUTO_TRADE")
	envFloat(&cfg.Execution.TradeBudget, "TRADE_BUDGET")
	envFloat(&cfg.Execution.Bankroll, "BANKROLL")
	envFloat(&cfg.Execution.MaxSpread, "MAX_SPREAD")
	envFloat(&cfg.Execution.MinDepthUSD, "MIN_DEPTH_USD")

	envInt(&cfg.Risk.PartialFillStreak, "KILL_PARTIAL_FILL_STREAK")
	envInt(&cfg.Risk.PartialFillDay, "KILL_PARTIAL_FILL_DAY")
	envInt(&cfg.Risk.APIErrors10m, "KILL_API_ERRORS_10M")
	envFloat(&cfg.Risk.LatencyMS, "KILL_LATENCY_MS")
	envInt(&cfg.Risk.LatencyWindowSec, "KILL_LATENCY_WINDOW_SEC")
	envInt(&cfg.Risk.ThinBookStreak, "KILL_THIN_BOOK_SCANS")
	envInt(&cfg.Risk.MaxTradesPerHour, "KILL_MAX_TRADES_PER_HOUR")
	envFloat(&cfg.Risk.MaxExposurePct, "KILL_MAX_EXPOSURE_PCT")

	if v := os.Getenv("CLOB_BASE"); v != "" {
		cfg.API.CLOBBase = v
	}
	if v := os.Getenv("GAMMA_BASE"); v != "" {
		cfg.API.GammaBase = v
	}
	if v := os.Getenv("POLYGON_RPC_URL"); v != "" {
		cfg.API.PolygonRPCURL = v
	}
	if v := os.Getenv("POLY_PRIVATE_KEY"); v != "" {
		cfg.API.WalletPrivateKeyHex = v
	}

	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}

	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_IDS"); v != "" {
		cfg.Telegram.ChatIDs = strings.Split(v, ",")
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Scheduling.ScanIntervalSeconds <= 0 {
		cfg.Scheduling.ScanIntervalSeconds = 180
	}
	if cfg.Scheduling.SummaryIntervalSeconds <= 0 {
		cfg.Scheduling.SummaryIntervalSeconds = 900
	}

	if cfg.Economics.MinProfitPerDollar <= 0 {
		cfg.Economics.MinProfitPerDollar = 0.003
	}
	if cfg.Economics.PolyFee <= 0 {
		cfg.Economics.PolyFee = 0.02
	}
	if cfg.Economics.MinEventVolume24h <= 0 {
		cfg.Economics.MinEventVolume24h = 5000
	}
	if cfg.Economics.RealertThreshold <= 0 {
		cfg.Economics.RealertThreshold = 0.05
	}

	if cfg.Execution.TradeBudget <= 0 {
		cfg.Execution.TradeBudget = 50
	}
	if cfg.Execution.Bankroll <= 0 {
		cfg.Execution.Bankroll = 100
	}
	if cfg.Execution.MaxSpread <= 0 {
		cfg.Execution.MaxSpread = 0.05
	}
	if cfg.Execution.MinDepthUSD <= 0 {
		cfg.Execution.MinDepthUSD = 20
	}

	if cfg.Risk.PartialFillStreak <= 0 {
		cfg.Risk.PartialFillStreak = 3
	}
	if cfg.Risk.PartialFillDay <= 0 {
		cfg.Risk.PartialFillDay = 8
	}
	if cfg.Risk.APIErrors10m <= 0 {
		cfg.Risk.APIErrors10m = 5
	}
	if cfg.Risk.LatencyMS <= 0 {
		cfg.Risk.LatencyMS = 4000
	}
	if cfg.Risk.LatencyWindowSec <= 0 {
		cfg.Risk.LatencyWindowSec = 120
	}
	if cfg.Risk.ThinBookStreak <= 0 {
		cfg.Risk.ThinBookStreak = 4
	}
	if cfg.Risk.MaxTradesPerHour <= 0 {
		cfg.Risk.MaxTradesPerHour = 20
	}
	if cfg.Risk.MaxExposurePct <= 0 {
		cfg.Risk.MaxExposurePct = 0.5
	}

	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.PolygonRPCURL == "" {
		cfg.API.PolygonRPCURL = "https://polygon-rpc.com"
	}

	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "hedgeengine.db"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func envInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*dst = n
}

func envFloat(dst *float64, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return
	}
	*dst = f
}

func envBool(dst *bool, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return
	}
	*dst = b
}

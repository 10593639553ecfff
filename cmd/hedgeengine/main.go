package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xhedge/hedgeengine/config"
	"github.com/0xhedge/hedgeengine/internal/adapters/marketdata"
	"github.com/0xhedge/hedgeengine/internal/adapters/notify"
	"github.com/0xhedge/hedgeengine/internal/adapters/orders"
	"github.com/0xhedge/hedgeengine/internal/adapters/storage"
	"github.com/0xhedge/hedgeengine/internal/depthprobe"
	"github.com/0xhedge/hedgeengine/internal/execution"
	"github.com/0xhedge/hedgeengine/internal/orchestrator"
	"github.com/0xhedge/hedgeengine/internal/ports"
	"github.com/0xhedge/hedgeengine/internal/reporter"
	"github.com/0xhedge/hedgeengine/internal/risk"
	"github.com/0xhedge/hedgeengine/internal/scanner"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	dryRun := flag.Bool("dry-run", false, "disable order placement regardless of AUTO_TRADE")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	autoTrade := cfg.Execution.AutoTrade && !*dryRun

	slog.Info("hedgeengine starting",
		"config", *configPath,
		"scan_interval", cfg.Scheduling.ScanInterval(),
		"summary_interval", cfg.Scheduling.SummaryInterval(),
		"auto_trade", autoTrade,
		"once", *once,
	)

	gammaClient := marketdata.NewClient(cfg.API.GammaBase)
	marketGW := marketdata.New(gammaClient)

	orderGW, err := orders.New(cfg.API.CLOBBase, cfg.API.WalletPrivateKeyHex, cfg.API.PolygonRPCURL)
	if err != nil {
		slog.Error("failed to build order gateway", "err", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	var sinks []ports.NotifySink
	if cfg.Telegram.Token != "" && len(cfg.Telegram.ChatIDs) > 0 {
		sinks = append(sinks, notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatIDs))
	} else {
		slog.Warn("telegram not configured, alerts will only be logged")
	}
	rep := reporter.New(cfg.Economics.PolyFee, sinks...)

	limits := risk.DefaultLimits()
	limits.MaxOpenExposurePct = cfg.Risk.MaxExposurePct
	limits.MaxTradesPerHour = cfg.Risk.MaxTradesPerHour
	limits.PartialFillStreak = cfg.Risk.PartialFillStreak
	limits.PartialFillDay = cfg.Risk.PartialFillDay
	limits.APIErrors10m = cfg.Risk.APIErrors10m
	limits.LatencyMS = cfg.Risk.LatencyMS
	limits.LatencyWindow = cfg.Risk.LatencyWindow()
	limits.ThinBookStreak = cfg.Risk.ThinBookStreak
	rm := risk.New(limits)

	probe := depthprobe.New(orderGW, store, rm, cfg.Execution.MaxSpread, cfg.Execution.MinDepthUSD)

	econ := scanner.Economics{
		MinProfitPerDollar: cfg.Economics.MinProfitPerDollar,
		PolyFee:            cfg.Economics.PolyFee,
		MinEventVolume24h:  cfg.Economics.MinEventVolume24h,
	}
	patternStore := scanner.NewDiscoveredPatternStore("discovered_patterns.json")
	patternScanner, err := scanner.NewPatternScanner(marketGW, econ, patternStore)
	if err != nil {
		slog.Error("failed to build pattern scanner", "err", err)
		os.Exit(1)
	}

	scanners := []scanner.Scanner{
		scanner.NewEventGroupScanner(marketGW, store, econ, 200),
		scanner.NewThresholdScanner(marketGW, econ),
		patternScanner,
	}

	scannerNames := make([]string, len(scanners))
	for i, sc := range scanners {
		scannerNames[i] = string(sc.Name())
	}

	executor := execution.New(orderGW, store, probe, rm, execution.Config{
		AutoTrade:   autoTrade,
		TradeBudget: cfg.Execution.TradeBudget,
		Bankroll:    cfg.Execution.Bankroll,
	})

	orch := orchestrator.New(scanners, store, executor, rep, rm, orderGW, orchestrator.Config{
		ScanInterval:     cfg.Scheduling.ScanInterval(),
		SummaryInterval:  cfg.Scheduling.SummaryInterval(),
		RealertThreshold: cfg.Economics.RealertThreshold,
		AutoTrade:        autoTrade,
		FeeRate:          cfg.Economics.PolyFee,
	}, slog.Default())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rep.Startup(ctx, scannerNames, struct {
		MinProfitPerDollar, PolyFee, MinEventVolume24h float64
	}{cfg.Economics.MinProfitPerDollar, cfg.Economics.PolyFee, cfg.Economics.MinEventVolume24h}, autoTrade, limits); err != nil {
		slog.Warn("startup announcement failed", "err", err)
	}

	if *once {
		if err := orch.Tick(ctx); err != nil {
			slog.Error("scan cycle failed", "err", err)
			os.Exit(1)
		}
		slog.Info("hedgeengine completed single scan cycle")
		return
	}

	if err := orch.Run(ctx); err != nil {
		slog.Error("orchestrator exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("hedgeengine stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

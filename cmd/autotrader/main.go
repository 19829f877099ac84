package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Trader/config"
	"github.com/Alias1177/Trader/internal/broker"
	"github.com/Alias1177/Trader/internal/market"
	"github.com/Alias1177/Trader/internal/router"
	sig "github.com/Alias1177/Trader/internal/signal"
	"github.com/Alias1177/Trader/internal/store"
	"github.com/Alias1177/Trader/internal/trading/risk"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	symbols := strings.Split(getEnvWithDefault("SYMBOLS", "EUR/USD"), ",")
	interval := time.Duration(getEnvIntWithDefault("SCAN_INTERVAL_SECONDS", 300)) * time.Second

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database initialization error")
	}
	st := store.New(db)

	marketClient := market.NewClient(cfg)
	snapshots := market.NewSnapshotBuilder(marketClient, cfg)
	generator := sig.NewGenerator(snapshots, st)

	registry := broker.NewRegistry(cfg)
	sizer := risk.NewSizer(cfg)
	orderRouter := router.New(st, st, registry, sizer)
	coordinator := router.NewCoordinator(
		orderRouter, st, st,
		cfg.MaxParallelDispatch,
		time.Duration(cfg.DispatchTimeout)*time.Second,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Strs("symbols", symbols).
		Dur("interval", interval).
		Msg("Auto-trader started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runCycle(ctx, st, generator, coordinator, symbols)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Auto-trader stopping")
			return
		case <-ticker.C:
			runCycle(ctx, st, generator, coordinator, symbols)
		}
	}
}

// runCycle scores every symbol once and fans qualifying signals out to all
// auto-trading accounts.
func runCycle(ctx context.Context, st *store.Store, generator *sig.Generator, coordinator *router.Coordinator, symbols []string) {
	expired, err := st.ExpireStaleOrders(ctx, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("Failed to expire stale orders")
	} else if expired > 0 {
		log.Info().Int64("count", expired).Msg("Expired stale orders")
	}

	for _, symbol := range symbols {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}

		generated, err := generator.Generate(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Signal generation failed")
			continue
		}

		if !generated.ShouldExecute() {
			log.Info().
				Str("symbol", symbol).
				Float64("confidence", generated.Confidence).
				Msg("Signal below execution threshold")
			continue
		}

		batch, err := coordinator.ExecuteForUser(ctx, generated, "")
		if err != nil {
			log.Warn().Err(err).Str("signal_id", generated.ID).Msg("Fan-out failed")
			continue
		}

		log.Info().
			Str("signal_id", generated.ID).
			Int("succeeded", batch.Succeeded()).
			Int("failed", batch.Failed()).
			Msg("Signal executed")
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

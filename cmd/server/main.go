package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Trader/config"
	"github.com/Alias1177/Trader/internal/broker"
	"github.com/Alias1177/Trader/internal/market"
	"github.com/Alias1177/Trader/internal/router"
	"github.com/Alias1177/Trader/internal/service"
	"github.com/Alias1177/Trader/internal/signal"
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

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database initialization error")
	}
	st := store.New(db)

	marketClient := market.NewClient(cfg)
	snapshots := market.NewSnapshotBuilder(marketClient, cfg)
	generator := signal.NewGenerator(snapshots, st)

	registry := broker.NewRegistry(cfg)
	sizer := risk.NewSizer(cfg)
	orderRouter := router.New(st, st, registry, sizer)
	coordinator := router.NewCoordinator(
		orderRouter, st, st,
		cfg.MaxParallelDispatch,
		time.Duration(cfg.DispatchTimeout)*time.Second,
	)

	server := service.NewAPIServer(cfg.ListenAddr, st, generator, orderRouter, coordinator)
	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

package main

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Trader/config"
	"github.com/Alias1177/Trader/internal/notify"
	"github.com/Alias1177/Trader/internal/store"
	"github.com/Alias1177/Trader/models"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

// Broadcasts the most recently executed signal to the configured Telegram
// chats. Run after a trading cycle, typically from cron.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.TelegramBotToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	chatIDs := parseChatIDs(os.Getenv("TELEGRAM_CHAT_IDS"))
	if len(chatIDs) == 0 {
		log.Fatal().Msg("TELEGRAM_CHAT_IDS not set in environment")
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database initialization error")
	}
	st := store.New(db)

	ctx := context.Background()
	signals, err := st.ListSignals(ctx, 50, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list signals")
	}

	var latest *models.Signal
	for i := range signals {
		if signals[i].Status == models.SignalExecuted {
			latest = &signals[i]
			break
		}
	}
	if latest == nil {
		log.Info().Msg("No executed signals to broadcast")
		return
	}

	notifier, err := notify.New(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	log.Info().Int("chats", len(chatIDs)).Str("signal_id", latest.ID).Msg("Broadcasting signal")
	notifier.NotifySignal(chatIDs, latest)
}

func parseChatIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Warn().Str("value", part).Msg("Skipping invalid chat id")
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

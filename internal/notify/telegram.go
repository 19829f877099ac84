package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Trader/models"
)

// Notifier pushes execution summaries to Telegram subscribers.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	logger zerolog.Logger
}

// New creates a Telegram notifier. Returns an error when the token is
// rejected by the Bot API.
func New(token string) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	return &Notifier{
		bot:    bot,
		logger: log.With().Str("component", "notifier").Logger(),
	}, nil
}

// NotifyBatch formats one fan-out result and sends it to every chat.
// Send failures are logged per chat and never abort the remainder.
func (n *Notifier) NotifyBatch(chatIDs []int64, batch *models.ExecutionBatch) {
	if batch == nil || batch.Signal == nil {
		return
	}
	text := FormatBatch(batch)

	sent := 0
	for _, chatID := range chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = "Markdown"
		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send notification")
			continue
		}
		sent++
	}

	n.logger.Info().
		Int("sent", sent).
		Int("total", len(chatIDs)).
		Str("signal_id", batch.Signal.ID).
		Msg("Broadcast complete")
}

// NotifySignal broadcasts a persisted signal using its stored fan-out
// counters, for the standalone broadcast binary.
func (n *Notifier) NotifySignal(chatIDs []int64, sig *models.Signal) {
	if sig == nil {
		return
	}
	n.NotifyBatch(chatIDs, &models.ExecutionBatch{Signal: sig})
}

// FormatBatch renders the execution summary message.
func FormatBatch(batch *models.ExecutionBatch) string {
	sig := batch.Signal

	executed, rejected := batch.Succeeded(), batch.Failed()
	if len(batch.Outcomes) == 0 {
		executed, rejected = sig.ExecutedCount, sig.RejectedCount
	}

	emoji := "📈"
	if sig.Direction == models.DirectionShort {
		emoji = "📉"
	}

	return fmt.Sprintf(
		"%s *%s %s*\n\n"+
			"Strategy: %s\n"+
			"Confidence: %.0f%%\n"+
			"Entry: %s\n"+
			"Stop Loss: %s\n"+
			"Take Profit: %s\n\n"+
			"Executed on %d account(s), %d rejected",
		emoji, sig.Symbol, sig.Direction,
		sig.Strategy,
		sig.Confidence,
		sig.EntryPrice.String(),
		sig.StopLoss.String(),
		sig.TakeProfit.String(),
		executed, rejected,
	)
}

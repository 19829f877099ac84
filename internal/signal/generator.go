package signal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Trader/models"
)

// SnapshotSource supplies the technical snapshot for a symbol.
type SnapshotSource interface {
	Build(ctx context.Context, symbol string) (*models.TechnicalSnapshot, error)
}

// Store persists generated signals.
type Store interface {
	InsertSignal(ctx context.Context, sig *models.Signal) error
}

// Generator runs the full scoring pipeline: snapshot -> confidence ->
// direction -> strategy -> persisted signal.
type Generator struct {
	snapshots SnapshotSource
	store     Store
	logger    zerolog.Logger
}

// NewGenerator creates a signal generator.
func NewGenerator(snapshots SnapshotSource, store Store) *Generator {
	return &Generator{
		snapshots: snapshots,
		store:     store,
		logger:    log.With().Str("component", "signal_generator").Logger(),
	}
}

// Generate scores one symbol and persists the resulting signal in GENERATED
// state. Signals whose support/resistance range collapses are discarded with
// an InvalidArgument error.
func (g *Generator) Generate(ctx context.Context, symbol string) (*models.Signal, error) {
	if symbol == "" {
		return nil, models.Errf(models.KindInvalidArgument, "symbol is required")
	}

	snap, err := g.snapshots.Build(ctx, symbol)
	if err != nil {
		return nil, models.WrapErr(models.KindInternal, err, "building snapshot for %s", symbol)
	}

	breakdown, confidence := Score(snap)
	direction := Direct(snap)

	priced, err := DerivePrices(snap, direction, confidence)
	if err != nil {
		g.logger.Warn().Err(err).Str("symbol", symbol).Msg("Discarding unpriceable signal")
		return nil, err
	}

	sig := &models.Signal{
		ID:              uuid.NewString(),
		Symbol:          symbol,
		Direction:       direction,
		Confidence:      confidence,
		Breakdown:       breakdown,
		EntryPrice:      priced.EntryPrice,
		StopLoss:        priced.StopLoss,
		TakeProfit:      priced.TakeProfit,
		TakeProfits:     priced.TakeProfits,
		RiskRewardRatio: priced.RiskRewardRatio,
		Strategy:        priced.Strategy,
		Timeframe:       snap.Timeframe,
		Snapshot:        *snap,
		Status:          models.SignalGenerated,
		CreatedAt:       time.Now().UTC(),
	}

	if err := g.store.InsertSignal(ctx, sig); err != nil {
		return nil, models.WrapErr(models.KindInternal, err, "persisting signal for %s", symbol)
	}

	g.logger.Info().
		Str("signal_id", sig.ID).
		Str("symbol", symbol).
		Str("direction", string(direction)).
		Float64("confidence", confidence).
		Str("strategy", sig.Strategy).
		Bool("should_execute", sig.ShouldExecute()).
		Msg("Signal generated")

	return sig, nil
}

package market

import (
	"context"
	"fmt"

	"github.com/Alias1177/Trader/config"
	"github.com/Alias1177/Trader/internal/calculate"
	"github.com/Alias1177/Trader/models"
)

// CandleSource supplies candles for a symbol. The HTTP client implements it;
// tests substitute a fixture.
type CandleSource interface {
	GetCandles(ctx context.Context, symbol string) ([]models.Candle, error)
}

// SnapshotBuilder turns raw candles into the technical snapshot consumed by
// the confidence model.
type SnapshotBuilder struct {
	source CandleSource
	config *config.Config
}

// NewSnapshotBuilder creates a snapshot builder over a candle source.
func NewSnapshotBuilder(source CandleSource, cfg *config.Config) *SnapshotBuilder {
	return &SnapshotBuilder{source: source, config: cfg}
}

// Build fetches candles for symbol and computes the full indicator snapshot.
func (b *SnapshotBuilder) Build(ctx context.Context, symbol string) (*models.TechnicalSnapshot, error) {
	candles, err := b.source.GetCandles(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching candles for %s: %w", symbol, err)
	}
	return b.FromCandles(symbol, candles)
}

// FromCandles computes the snapshot from an already-fetched candle series.
func (b *SnapshotBuilder) FromCandles(symbol string, candles []models.Candle) (*models.TechnicalSnapshot, error) {
	if len(candles) < 5 {
		return nil, fmt.Errorf("not enough candles for %s: got %d", symbol, len(candles))
	}

	macd, macdSignal, macdHist := calculate.MACD(
		candles,
		b.config.MACDFastPeriod,
		b.config.MACDSlowPeriod,
		b.config.MACDSignal,
	)
	support, resistance := calculate.SupportResistance(candles)

	last := candles[len(candles)-1]
	spread := last.High - last.Low
	if len(candles) >= 10 {
		// Average candle range stands in for the quoted spread
		var sum float64
		for i := len(candles) - 10; i < len(candles); i++ {
			sum += candles[i].High - candles[i].Low
		}
		spread = sum / 10 / 10 // a tenth of the mean range
	}

	return &models.TechnicalSnapshot{
		Symbol:     symbol,
		Timeframe:  b.config.Interval,
		Price:      last.Close,
		Spread:     spread,
		RSI:        calculate.RSI(candles, b.config.RSIPeriod),
		MACD:       macd,
		MACDSignal: macdSignal,
		MACDHist:   macdHist,
		ShortMA:    calculate.SMA(candles, b.config.ShortMAPeriod),
		LongMA:     calculate.SMA(candles, b.config.LongMAPeriod),
		Support:    support,
		Resistance: resistance,
		Trend:      calculate.Trend(candles, b.config.ShortMAPeriod, b.config.LongMAPeriod),
		Volatility: calculate.Volatility(candles),
		Volume:     last.Volume,
	}, nil
}

package signal

import (
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Trader/models"
)

// Strategy names, picked by confidence band.
const (
	StrategyAggressiveScalping = "AGGRESSIVE_SCALPING"
	StrategyTrendFollowing     = "TREND_FOLLOWING"
	StrategyMeanReversion      = "MEAN_REVERSION"
	StrategyConservative       = "CONSERVATIVE"
)

// PricedSignal holds the strategy choice and the derived order prices.
type PricedSignal struct {
	Strategy        string
	EntryPrice      decimal.Decimal
	StopLoss        decimal.Decimal
	TakeProfit      decimal.Decimal
	TakeProfits     []float64
	RiskRewardRatio float64
}

// SelectStrategy maps a confidence score to a strategy name.
func SelectStrategy(confidence float64) string {
	switch {
	case confidence >= 80:
		return StrategyAggressiveScalping
	case confidence >= 70:
		return StrategyTrendFollowing
	case confidence >= 60:
		return StrategyMeanReversion
	default:
		return StrategyConservative
	}
}

// DerivePrices computes entry, stop and target from the snapshot. The
// volatility distance is half the support/resistance range; when that range
// collapses the signal is invalid and must be discarded rather than priced
// with an infinite risk/reward.
func DerivePrices(snap *models.TechnicalSnapshot, direction models.Direction, confidence float64) (*PricedSignal, error) {
	atr := (snap.Resistance - snap.Support) / 2
	if atr <= 0 {
		return nil, models.Errf(models.KindInvalidArgument,
			"degenerate support/resistance range for %s: support=%.5f resistance=%.5f",
			snap.Symbol, snap.Support, snap.Resistance)
	}

	price := decimal.NewFromFloat(snap.Price)
	spread := decimal.NewFromFloat(snap.Spread)
	dist := decimal.NewFromFloat(atr)

	var entry, stop, target, ladder1 decimal.Decimal
	if direction == models.DirectionLong {
		entry = price.Add(spread)
		stop = entry.Sub(dist)
		target = entry.Add(dist.Mul(decimal.NewFromInt(2)))
		ladder1 = entry.Add(dist)
	} else {
		entry = price.Sub(spread)
		stop = entry.Add(dist)
		target = entry.Sub(dist.Mul(decimal.NewFromInt(2)))
		ladder1 = entry.Sub(dist)
	}

	risk := entry.Sub(stop).Abs()
	if risk.IsZero() {
		return nil, models.Errf(models.KindInvalidArgument,
			"zero stop distance for %s", snap.Symbol)
	}
	reward := target.Sub(entry).Abs()
	rr, _ := reward.Div(risk).Float64()

	l1, _ := ladder1.Float64()
	l2, _ := target.Float64()

	return &PricedSignal{
		Strategy:        SelectStrategy(confidence),
		EntryPrice:      entry,
		StopLoss:        stop,
		TakeProfit:      target,
		TakeProfits:     []float64{l1, l2},
		RiskRewardRatio: rr,
	}, nil
}

package signal

import (
	"math"

	"github.com/Alias1177/Trader/models"
)

// Factor weights of the confidence model. The five factors sum to at most
// 100 before clamping.
const (
	maxTechnicalScore = 40.0
	maxTrendScore     = 25.0
	maxVolumeScore    = 15.0
	maxMomentumScore  = 10.0
	maxRiskScore      = 10.0

	macdHistThreshold = 0.0002
	rsiOverbought     = 70.0
	rsiOversold       = 30.0
)

// Score computes the confidence breakdown for one technical snapshot.
// Pure function of its input; out-of-range values are clamped, never
// rejected.
func Score(snap *models.TechnicalSnapshot) (models.ConfidenceBreakdown, float64) {
	var b models.ConfidenceBreakdown

	// Technical factor: RSI extremes, MACD cross, histogram magnitude
	if snap.RSI > rsiOverbought || snap.RSI < rsiOversold {
		b.Technical += 15
	}
	if snap.MACD > snap.MACDSignal {
		b.Technical += 10
	}
	if math.Abs(snap.MACDHist) > macdHistThreshold {
		b.Technical += 15
	}

	// Trend factor: directional markets score, sideways does not
	if snap.Trend == models.TrendBullish || snap.Trend == models.TrendBearish {
		b.Trend += 20
	}
	if snap.ShortMA > snap.LongMA {
		b.Trend += 5
	}

	// Volume factor
	switch {
	case snap.Volume > 500000:
		b.Volume += 15
	case snap.Volume > 100000:
		b.Volume += 8
	}

	// Momentum factor scales with histogram magnitude
	b.Momentum = math.Min(maxMomentumScore, math.Abs(snap.MACDHist)*10000*2)

	// Risk factor rewards calm markets
	switch snap.Volatility {
	case models.VolatilityLow:
		b.Risk = 10
	case models.VolatilityMedium:
		b.Risk = 6
	default:
		b.Risk = 2
	}

	return b, clamp(b.Sum(), 0, 100)
}

// Direct computes the trade direction from a signed score over RSI extremes,
// trend and MACD cross. Ties resolve to LONG.
func Direct(snap *models.TechnicalSnapshot) models.Direction {
	score := 0.0

	if snap.RSI < rsiOversold {
		score += 2
	} else if snap.RSI > rsiOverbought {
		score -= 2
	}

	switch snap.Trend {
	case models.TrendBullish:
		score += 2
	case models.TrendBearish:
		score -= 2
	}

	if snap.MACD > snap.MACDSignal {
		score++
	} else if snap.MACD < snap.MACDSignal {
		score--
	}

	if score < 0 {
		return models.DirectionShort
	}
	return models.DirectionLong
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

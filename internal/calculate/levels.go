package calculate

import (
	"math"
	"sort"

	"github.com/Alias1177/Trader/models"
)

// SupportResistance finds the nearest support and resistance levels from
// clustered swing highs and lows. Returns (0, 0) when there is not enough
// data or no level sits on the requested side of price.
func SupportResistance(candles []models.Candle) (float64, float64) {
	if len(candles) < 20 {
		return 0, 0
	}

	pricePoints := make(map[float64]int)
	priceTolerance := 0.0002 // approximately 2 pips on a major pair

	// Scan for swing highs and lows
	for i := 2; i < len(candles)-2; i++ {
		if candles[i].Low < candles[i-1].Low &&
			candles[i].Low < candles[i-2].Low &&
			candles[i].Low < candles[i+1].Low &&
			candles[i].Low < candles[i+2].Low {
			level := math.Round(candles[i].Low/priceTolerance) * priceTolerance
			pricePoints[level]++
		}

		if candles[i].High > candles[i-1].High &&
			candles[i].High > candles[i-2].High &&
			candles[i].High > candles[i+1].High &&
			candles[i].High > candles[i+2].High {
			level := math.Round(candles[i].High/priceTolerance) * priceTolerance
			pricePoints[level]++
		}
	}

	// Recent closes near a level strengthen it
	for i := len(candles) - 10; i < len(candles); i++ {
		for price := range pricePoints {
			if math.Abs(candles[i].Close-price) < priceTolerance*2 {
				pricePoints[price]++
			}
		}
	}

	currentPrice := candles[len(candles)-1].Close

	var support, resistance []float64
	for price := range pricePoints {
		if price < currentPrice {
			support = append(support, price)
		} else if price > currentPrice {
			resistance = append(resistance, price)
		}
	}

	// Nearest level on each side
	sort.Sort(sort.Reverse(sort.Float64Slice(support)))
	sort.Float64s(resistance)

	var s, r float64
	if len(support) > 0 {
		s = support[0]
	}
	if len(resistance) > 0 {
		r = resistance[0]
	}
	return s, r
}

// ATR computes the average true range over the given period.
func ATR(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 0
	}

	var trueRanges []float64
	for i := 1; i < len(candles); i++ {
		highLow := candles[i].High - candles[i].Low
		highPrevClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowPrevClose := math.Abs(candles[i].Low - candles[i-1].Close)
		trueRanges = append(trueRanges, math.Max(highLow, math.Max(highPrevClose, lowPrevClose)))
	}

	periodToUse := period
	if len(trueRanges) < period {
		periodToUse = len(trueRanges)
	}

	var sum float64
	for i := len(trueRanges) - periodToUse; i < len(trueRanges); i++ {
		sum += trueRanges[i]
	}
	return sum / float64(periodToUse)
}

// Trend classifies the price series by comparing the short and long moving
// averages against a flat-market band.
func Trend(candles []models.Candle, shortPeriod, longPeriod int) models.TrendState {
	if len(candles) < longPeriod {
		return models.TrendSideways
	}

	shortMA := SMA(candles, shortPeriod)
	longMA := SMA(candles, longPeriod)
	if longMA == 0 {
		return models.TrendSideways
	}

	// Band of 0.1% around the long average counts as sideways
	diff := (shortMA - longMA) / longMA
	switch {
	case diff > 0.001:
		return models.TrendBullish
	case diff < -0.001:
		return models.TrendBearish
	default:
		return models.TrendSideways
	}
}

// Volatility buckets the ratio of short-term to long-term ATR.
func Volatility(candles []models.Candle) models.VolatilityLevel {
	atr5 := ATR(candles, 5)
	atr20 := ATR(candles, 20)
	if atr20 == 0 {
		return models.VolatilityMedium
	}

	ratio := atr5 / atr20
	switch {
	case ratio > 1.5:
		return models.VolatilityHigh
	case ratio < 0.7:
		return models.VolatilityLow
	default:
		return models.VolatilityMedium
	}
}

package calculate

import (
	"github.com/Alias1177/Trader/models"
)

// RSI computes the relative strength index over the given period using
// Wilder smoothing.
func RSI(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 50.0 // Default value if not enough data
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	// Smooth the rest of the series
	for i := period + 1; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			avgGain = (avgGain*float64(period-1) + change) / float64(period)
			avgLoss = (avgLoss * float64(period-1)) / float64(period)
		} else {
			avgGain = (avgGain * float64(period-1)) / float64(period)
			avgLoss = (avgLoss*float64(period-1) - change) / float64(period)
		}
	}

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// SMA computes the simple moving average of closes over the last period candles.
func SMA(candles []models.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	if len(candles) < period {
		period = len(candles)
	}

	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	return sum / float64(period)
}

// emaFromPrices seeds an EMA with the SMA of the first period values and
// folds in the remainder.
func emaFromPrices(prices []float64, period int) float64 {
	if len(prices) < period {
		return prices[len(prices)-1]
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
	}
	return ema
}

// MACD returns the MACD line, signal line and histogram for the close series.
func MACD(candles []models.Candle, fastPeriod, slowPeriod, signalPeriod int) (float64, float64, float64) {
	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}

	if len(closes) < slowPeriod+signalPeriod {
		return 0, 0, 0
	}

	macdLine := emaFromPrices(closes, fastPeriod) - emaFromPrices(closes, slowPeriod)

	// Signal line is the EMA of the MACD history
	macdHistory := make([]float64, 0, len(closes)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(closes); i++ {
		window := closes[:i+1]
		macdHistory = append(macdHistory, emaFromPrices(window, fastPeriod)-emaFromPrices(window, slowPeriod))
	}

	signalLine := 0.0
	if len(macdHistory) >= signalPeriod {
		signalLine = emaFromPrices(macdHistory, signalPeriod)
	}

	return macdLine, signalLine, macdLine - signalLine
}

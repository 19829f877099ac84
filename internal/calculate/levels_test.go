package calculate

import (
	"math"
	"testing"

	"github.com/Alias1177/Trader/models"
)

// rangeCandles builds n candles closing at mid with the given high-low range.
func rangeCandles(n int, mid, rng float64) []models.Candle {
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{
			Open:  mid,
			High:  mid + rng/2,
			Low:   mid - rng/2,
			Close: mid,
		}
	}
	return candles
}

func TestSupportResistance(t *testing.T) {
	t.Run("too few candles", func(t *testing.T) {
		s, r := SupportResistance(rangeCandles(10, 100, 1))
		if s != 0 || r != 0 {
			t.Errorf("SupportResistance() = %v/%v, want 0/0", s, r)
		}
	})

	t.Run("zigzag series brackets the price", func(t *testing.T) {
		// Swing highs at 101 every fifth candle, swing lows at 99, price
		// pinned to 100 in between.
		candles := make([]models.Candle, 40)
		for i := range candles {
			c := models.Candle{Open: 100, High: 100.3, Low: 99.7, Close: 100}
			switch i % 5 {
			case 2:
				c.High = 101
			case 4:
				c.Low = 99
			}
			candles[i] = c
		}

		s, r := SupportResistance(candles)
		if math.Abs(s-99) > 1e-6 {
			t.Errorf("support = %v, want 99", s)
		}
		if math.Abs(r-101) > 1e-6 {
			t.Errorf("resistance = %v, want 101", r)
		}
	})
}

func TestATR(t *testing.T) {
	t.Run("constant range", func(t *testing.T) {
		got := ATR(rangeCandles(30, 100, 1), 14)
		if math.Abs(got-1) > 1e-9 {
			t.Errorf("ATR() = %v, want 1", got)
		}
	})

	t.Run("insufficient data", func(t *testing.T) {
		if got := ATR(rangeCandles(5, 100, 1), 14); got != 0 {
			t.Errorf("ATR() = %v, want 0", got)
		}
	})
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name string
		step float64
		want models.TrendState
	}{
		{name: "rising closes", step: 0.1, want: models.TrendBullish},
		{name: "falling closes", step: -0.1, want: models.TrendBearish},
		{name: "flat closes", step: 0, want: models.TrendSideways},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candles := trendingCandles(50, 100, tt.step)
			if got := Trend(candles, 5, 20); got != tt.want {
				t.Errorf("Trend() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("insufficient data is sideways", func(t *testing.T) {
		if got := Trend(trendingCandles(5, 100, 1), 5, 20); got != models.TrendSideways {
			t.Errorf("Trend() = %v, want SIDEWAYS", got)
		}
	})
}

func TestVolatility(t *testing.T) {
	t.Run("expanding ranges read high", func(t *testing.T) {
		candles := append(rangeCandles(25, 100, 0.1), rangeCandles(5, 100, 1)...)
		if got := Volatility(candles); got != models.VolatilityHigh {
			t.Errorf("Volatility() = %v, want HIGH", got)
		}
	})

	t.Run("contracting ranges read low", func(t *testing.T) {
		candles := append(rangeCandles(25, 100, 1), rangeCandles(5, 100, 0.1)...)
		if got := Volatility(candles); got != models.VolatilityLow {
			t.Errorf("Volatility() = %v, want LOW", got)
		}
	})

	t.Run("steady ranges read medium", func(t *testing.T) {
		if got := Volatility(rangeCandles(30, 100, 1)); got != models.VolatilityMedium {
			t.Errorf("Volatility() = %v, want MEDIUM", got)
		}
	})
}

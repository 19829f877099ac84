package calculate

import (
	"math"
	"testing"

	"github.com/Alias1177/Trader/models"
)

func candlesFromCloses(closes ...float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{Open: c, High: c, Low: c, Close: c}
	}
	return candles
}

func trendingCandles(n int, start, step float64) []models.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + step*float64(i)
	}
	return candlesFromCloses(closes...)
}

func TestRSI(t *testing.T) {
	t.Run("insufficient data defaults to midpoint", func(t *testing.T) {
		if got := RSI(candlesFromCloses(1, 2, 3), 14); got != 50 {
			t.Errorf("RSI() = %v, want 50", got)
		}
	})

	t.Run("monotonic rise saturates at 100", func(t *testing.T) {
		if got := RSI(trendingCandles(30, 100, 0.5), 14); got != 100 {
			t.Errorf("RSI() = %v, want 100", got)
		}
	})

	t.Run("monotonic fall drops to zero", func(t *testing.T) {
		if got := RSI(trendingCandles(30, 100, -0.5), 14); got > 1e-9 {
			t.Errorf("RSI() = %v, want 0", got)
		}
	})

	t.Run("mixed series stays in range", func(t *testing.T) {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = 100 + math.Sin(float64(i))*2
		}
		got := RSI(candlesFromCloses(closes...), 14)
		if got < 0 || got > 100 {
			t.Errorf("RSI() = %v, out of range", got)
		}
	})
}

func TestSMA(t *testing.T) {
	candles := candlesFromCloses(1, 2, 3, 4, 5)

	tests := []struct {
		name   string
		period int
		want   float64
	}{
		{name: "last three", period: 3, want: 4},
		{name: "whole series", period: 5, want: 3},
		{name: "period longer than series uses everything", period: 10, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SMA(candles, tt.period); got != tt.want {
				t.Errorf("SMA(period=%d) = %v, want %v", tt.period, got, tt.want)
			}
		})
	}

	if got := SMA(nil, 3); got != 0 {
		t.Errorf("SMA(empty) = %v, want 0", got)
	}
}

func TestMACD(t *testing.T) {
	t.Run("insufficient data returns zeros", func(t *testing.T) {
		macd, sig, hist := MACD(candlesFromCloses(1, 2, 3), 12, 26, 9)
		if macd != 0 || sig != 0 || hist != 0 {
			t.Errorf("MACD() = %v/%v/%v, want zeros", macd, sig, hist)
		}
	})

	t.Run("uptrend keeps fast above slow", func(t *testing.T) {
		macd, sig, hist := MACD(trendingCandles(60, 100, 0.2), 12, 26, 9)
		if macd <= 0 {
			t.Errorf("macd = %v, want positive in an uptrend", macd)
		}
		if math.Abs(hist-(macd-sig)) > 1e-12 {
			t.Errorf("hist = %v, want macd-signal = %v", hist, macd-sig)
		}
	})

	t.Run("downtrend keeps fast below slow", func(t *testing.T) {
		macd, _, _ := MACD(trendingCandles(60, 100, -0.2), 12, 26, 9)
		if macd >= 0 {
			t.Errorf("macd = %v, want negative in a downtrend", macd)
		}
	})
}

package signal

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/Trader/models"
)

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{confidence: 95, want: StrategyAggressiveScalping},
		{confidence: 80, want: StrategyAggressiveScalping},
		{confidence: 79.9, want: StrategyTrendFollowing},
		{confidence: 70, want: StrategyTrendFollowing},
		{confidence: 69.9, want: StrategyMeanReversion},
		{confidence: 60, want: StrategyMeanReversion},
		{confidence: 59.9, want: StrategyConservative},
		{confidence: 0, want: StrategyConservative},
	}

	for _, tt := range tests {
		if got := SelectStrategy(tt.confidence); got != tt.want {
			t.Errorf("SelectStrategy(%v) = %v, want %v", tt.confidence, got, tt.want)
		}
	}
}

func TestDerivePrices(t *testing.T) {
	// Range of 1.0 gives a volatility distance of exactly 0.5, so every
	// derived price is exact in decimal.
	snap := &models.TechnicalSnapshot{
		Symbol:     "EUR/USD",
		Price:      2.5,
		Spread:     0.1,
		Support:    2.0,
		Resistance: 3.0,
	}

	tests := []struct {
		name       string
		direction  models.Direction
		wantEntry  string
		wantStop   string
		wantTarget string
	}{
		{
			name:       "long enters above price",
			direction:  models.DirectionLong,
			wantEntry:  "2.6",
			wantStop:   "2.1",
			wantTarget: "3.6",
		},
		{
			name:       "short enters below price",
			direction:  models.DirectionShort,
			wantEntry:  "2.4",
			wantStop:   "2.9",
			wantTarget: "1.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priced, err := DerivePrices(snap, tt.direction, 75)
			if err != nil {
				t.Fatalf("DerivePrices() error = %v", err)
			}
			if priced.Strategy != StrategyTrendFollowing {
				t.Errorf("Strategy = %v, want %v", priced.Strategy, StrategyTrendFollowing)
			}
			if !priced.EntryPrice.Equal(decimal.RequireFromString(tt.wantEntry)) {
				t.Errorf("EntryPrice = %v, want %v", priced.EntryPrice, tt.wantEntry)
			}
			if !priced.StopLoss.Equal(decimal.RequireFromString(tt.wantStop)) {
				t.Errorf("StopLoss = %v, want %v", priced.StopLoss, tt.wantStop)
			}
			if !priced.TakeProfit.Equal(decimal.RequireFromString(tt.wantTarget)) {
				t.Errorf("TakeProfit = %v, want %v", priced.TakeProfit, tt.wantTarget)
			}
			if priced.RiskRewardRatio != 2 {
				t.Errorf("RiskRewardRatio = %v, want 2", priced.RiskRewardRatio)
			}
			if len(priced.TakeProfits) != 2 {
				t.Fatalf("TakeProfits = %v, want two ladder levels", priced.TakeProfits)
			}
		})
	}
}

func TestDerivePricesLadderOrdering(t *testing.T) {
	snap := &models.TechnicalSnapshot{
		Symbol:     "GBP/USD",
		Price:      1.2650,
		Spread:     0.0002,
		Support:    1.2600,
		Resistance: 1.2700,
	}

	priced, err := DerivePrices(snap, models.DirectionLong, 85)
	if err != nil {
		t.Fatalf("DerivePrices() error = %v", err)
	}

	entry, _ := priced.EntryPrice.Float64()
	if !(priced.TakeProfits[0] > entry && priced.TakeProfits[1] > priced.TakeProfits[0]) {
		t.Errorf("long ladder not ascending from entry: entry=%v ladder=%v", entry, priced.TakeProfits)
	}
	if math.Abs(priced.RiskRewardRatio-2) > 1e-9 {
		t.Errorf("RiskRewardRatio = %v, want 2", priced.RiskRewardRatio)
	}
}

func TestDerivePricesRejectsDegenerateRange(t *testing.T) {
	tests := []struct {
		name string
		snap models.TechnicalSnapshot
	}{
		{
			name: "collapsed range",
			snap: models.TechnicalSnapshot{Symbol: "EUR/USD", Price: 1.1, Support: 1.1, Resistance: 1.1},
		},
		{
			name: "inverted range",
			snap: models.TechnicalSnapshot{Symbol: "EUR/USD", Price: 1.1, Support: 1.2, Resistance: 1.0},
		},
		{
			name: "missing levels",
			snap: models.TechnicalSnapshot{Symbol: "EUR/USD", Price: 1.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DerivePrices(&tt.snap, models.DirectionLong, 75)
			if err == nil {
				t.Fatal("DerivePrices() expected error, got nil")
			}
			if !models.IsKind(err, models.KindInvalidArgument) {
				t.Errorf("error kind = %v, want %v", models.KindOf(err), models.KindInvalidArgument)
			}
		})
	}
}

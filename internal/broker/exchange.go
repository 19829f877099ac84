package broker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Trader/models"
)

// ExchangeAdapter models a crypto venue (Binance, Bybit, Coinbase) until a
// live integration replaces it. Fills are simulated with a per-venue failure
// probability and commission rate so isolation across accounts stays
// testable.
type ExchangeAdapter struct {
	name           string
	commissionRate decimal.Decimal // applied on notional volume
	failureRate    float64
	latency        time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewExchangeAdapter creates a simulated exchange venue.
func NewExchangeAdapter(name string, commissionRate, failureRate float64, latency time.Duration) *ExchangeAdapter {
	return &ExchangeAdapter{
		name:           name,
		commissionRate: decimal.NewFromFloat(commissionRate),
		failureRate:    failureRate,
		latency:        latency,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed pins the failure RNG, for deterministic tests.
func (a *ExchangeAdapter) Seed(seed int64) *ExchangeAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rng = rand.New(rand.NewSource(seed))
	return a
}

func (a *ExchangeAdapter) Name() string { return a.name }

func (a *ExchangeAdapter) roll() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64()
}

func (a *ExchangeAdapter) wait(ctx context.Context) error {
	if a.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(a.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Place simulates a market fill at the requested price, charging the
// venue's commission on notional volume.
func (a *ExchangeAdapter) Place(ctx context.Context, req *PlaceRequest) (*Result, error) {
	if req.Volume.LessThanOrEqual(decimal.Zero) {
		return nil, models.Errf(models.KindInvalidArgument, "non-positive volume %s", req.Volume)
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return nil, models.Errf(models.KindInvalidArgument, "missing price for %s order", a.name)
	}

	if err := a.wait(ctx); err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	if a.roll() < a.failureRate {
		return &Result{Success: false, Error: a.name + ": order rejected by venue"}, nil
	}

	notional := req.Price.Mul(req.Volume)
	return &Result{
		Success:        true,
		Ticket:         uuid.NewString(),
		ExecutionPrice: req.Price,
		Commission:     notional.Mul(a.commissionRate),
		Swap:           decimal.Zero,
	}, nil
}

// Close simulates closing a position; the same failure probability applies.
func (a *ExchangeAdapter) Close(ctx context.Context, ticket string, volume decimal.Decimal) (*Result, error) {
	if ticket == "" {
		return nil, models.Errf(models.KindInvalidArgument, "ticket is required")
	}

	if err := a.wait(ctx); err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	if a.roll() < a.failureRate {
		return &Result{Success: false, Error: a.name + ": close rejected by venue"}, nil
	}

	return &Result{
		Success:    true,
		Ticket:     uuid.NewString(),
		Commission: decimal.Zero,
		Swap:       decimal.Zero,
	}, nil
}

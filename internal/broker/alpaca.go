package broker

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Trader/models"
)

// AlpacaAdapter models commission-free equities execution. Volume is in
// whole shares: fractional volume is floored, and anything below one share
// cannot be placed.
type AlpacaAdapter struct{}

// NewAlpacaAdapter creates the equities adapter.
func NewAlpacaAdapter() *AlpacaAdapter {
	return &AlpacaAdapter{}
}

func (a *AlpacaAdapter) Name() string { return "alpaca" }

func (a *AlpacaAdapter) Place(ctx context.Context, req *PlaceRequest) (*Result, error) {
	if req.Volume.LessThanOrEqual(decimal.Zero) {
		return nil, models.Errf(models.KindInvalidArgument, "non-positive volume %s", req.Volume)
	}
	if err := ctx.Err(); err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	shares := req.Volume.Floor()
	if shares.IsZero() {
		return &Result{Success: false, Error: "alpaca: volume rounds below one share"}, nil
	}

	return &Result{
		Success:        true,
		Ticket:         uuid.NewString(),
		ExecutionPrice: req.Price,
		Commission:     decimal.Zero,
		Swap:           decimal.Zero,
	}, nil
}

func (a *AlpacaAdapter) Close(ctx context.Context, ticket string, volume decimal.Decimal) (*Result, error) {
	if ticket == "" {
		return nil, models.Errf(models.KindInvalidArgument, "ticket is required")
	}
	if err := ctx.Err(); err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	return &Result{
		Success:    true,
		Ticket:     uuid.NewString(),
		Commission: decimal.Zero,
		Swap:       decimal.Zero,
	}, nil
}

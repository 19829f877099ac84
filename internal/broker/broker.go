// Package broker isolates broker-specific order placement behind a single
// adapter interface, one implementation per broker family.
package broker

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/Trader/config"
	"github.com/Alias1177/Trader/models"
)

// PlaceRequest is the venue-independent order placement request.
type PlaceRequest struct {
	Symbol     string
	Action     models.OrderAction
	Volume     decimal.Decimal
	Price      decimal.Decimal
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
	Comment    string
}

// Result is the structured outcome of a placement or close. Broker-side
// failures come back as Success=false with the venue's message, not as a Go
// error.
type Result struct {
	Success        bool
	Ticket         string
	ExecutionPrice decimal.Decimal
	Commission     decimal.Decimal
	Swap           decimal.Decimal
	Error          string
}

// Adapter executes and closes orders against one external trading venue.
type Adapter interface {
	// Name returns the venue identifier, e.g. "mt5" or "binance".
	Name() string

	// Place submits an order. A nil error with Success=false is a
	// venue-side rejection; a non-nil error is a malformed request.
	Place(ctx context.Context, req *PlaceRequest) (*Result, error)

	// Close exits an open position by broker ticket, fully or for a
	// partial volume.
	Close(ctx context.Context, ticket string, volume decimal.Decimal) (*Result, error)
}

// Registry resolves the adapter for an account's broker family. Selection is
// a pure function of the family field; unsupported families fail before any
// network call.
type Registry struct {
	cfg *config.Config
}

// NewRegistry creates an adapter registry.
func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{cfg: cfg}
}

// ForAccount returns the adapter matching the account's broker family.
func (r *Registry) ForAccount(acc *models.TradingAccount) (Adapter, error) {
	switch acc.Broker {
	case models.BrokerMT4, models.BrokerMT5:
		return NewMT5Adapter(acc.Credentials, r.cfg)
	case models.BrokerBinance:
		return NewExchangeAdapter("binance", 0.0010, r.cfg.BinanceFailureRate, 0), nil
	case models.BrokerBybit:
		return NewExchangeAdapter("bybit", 0.0006, r.cfg.BybitFailureRate, 0), nil
	case models.BrokerCoinbase:
		return NewExchangeAdapter("coinbase", 0.0050, r.cfg.CoinbaseFailureRate, 0), nil
	case models.BrokerAlpaca:
		return NewAlpacaAdapter(), nil
	default:
		return nil, models.Errf(models.KindInvalidArgument,
			"unsupported broker family %q", acc.Broker)
	}
}

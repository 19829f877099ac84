// Package router validates, sizes, persists and dispatches orders, and
// fans signals out across trading accounts.
package router

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Trader/internal/broker"
	"github.com/Alias1177/Trader/internal/store"
	"github.com/Alias1177/Trader/internal/trading/risk"
	"github.com/Alias1177/Trader/models"
)

// AdapterRegistry resolves the broker adapter for an account.
type AdapterRegistry interface {
	ForAccount(acc *models.TradingAccount) (broker.Adapter, error)
}

// HealthProber is implemented by adapters that can report venue readiness
// ahead of dispatch. An unhealthy probe is logged, never blocking: the
// placement attempt itself decides the outcome.
type HealthProber interface {
	Healthy(ctx context.Context) (bool, error)
}

// Router owns the order lifecycle: every placement attempt becomes a row
// that is only ever transitioned, never deleted.
type Router struct {
	accounts store.AccountStore
	orders   store.OrderStore
	adapters AdapterRegistry
	sizer    *risk.Sizer
	logger   zerolog.Logger
}

// New creates an order router.
func New(accounts store.AccountStore, orders store.OrderStore, adapters AdapterRegistry, sizer *risk.Sizer) *Router {
	return &Router{
		accounts: accounts,
		orders:   orders,
		adapters: adapters,
		sizer:    sizer,
		logger:   log.With().Str("component", "order_router").Logger(),
	}
}

// Submit sizes and dispatches one order for the signal on one account.
// Validation failures (inactive account, auto-trading off, unknown broker)
// reject before any row is written or any broker call made. Broker failures
// come back as a failed outcome with the order left in REJECTED.
func (r *Router) Submit(ctx context.Context, accountID string, sig *models.Signal) (*models.OrderOutcome, error) {
	if sig == nil {
		return nil, models.Errf(models.KindInvalidArgument, "signal is required")
	}
	if sig.EntryPrice.LessThanOrEqual(decimal.Zero) {
		return nil, models.Errf(models.KindInvalidArgument, "signal %s has no entry price", sig.ID)
	}

	acc, err := r.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acc.Active {
		return nil, models.Errf(models.KindPreconditionFailed, "account %s is inactive", accountID)
	}
	if !acc.AutoTrading {
		return nil, models.Errf(models.KindPreconditionFailed, "auto-trading disabled on account %s", accountID)
	}

	adapter, err := r.adapters.ForAccount(acc)
	if err != nil {
		return nil, err
	}
	r.probeHealth(ctx, adapter, accountID)

	action := models.ActionBuy
	if sig.Direction == models.DirectionShort {
		action = models.ActionSell
	}

	volume := r.sizer.Volume(acc.Balance, acc.RiskPercent, sig.EntryPrice, sig.StopLoss)

	order := &models.Order{
		ID:         uuid.NewString(),
		UserID:     acc.UserID,
		AccountID:  acc.ID,
		SignalID:   sig.ID,
		Symbol:     sig.Symbol,
		Action:     action,
		Type:       models.OrderTypeMarket,
		Volume:     volume,
		Price:      sig.EntryPrice,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		Status:     models.OrderPending,
		Commission: decimal.Zero,
		Swap:       decimal.Zero,
		Profit:     decimal.Zero,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.orders.InsertOrder(ctx, order); err != nil {
		return nil, models.WrapErr(models.KindInternal, err, "persisting order for account %s", accountID)
	}

	res, err := adapter.Place(ctx, &broker.PlaceRequest{
		Symbol:     order.Symbol,
		Action:     order.Action,
		Volume:     order.Volume,
		Price:      order.Price,
		StopLoss:   order.StopLoss,
		TakeProfit: order.TakeProfit,
		Comment:    "signal " + sig.ID,
	})
	if err != nil {
		// A malformed request still leaves an auditable rejected row
		return r.reject(ctx, order, err.Error())
	}
	if !res.Success {
		return r.reject(ctx, order, res.Error)
	}

	return r.fill(ctx, order, res)
}

// Close builds the mirror-direction order for an open position and routes
// it through the same dispatch path. Both FILLED positions and the PARTIAL
// remainder of an earlier partial close are closable. The original order is
// transitioned only after the mirror fills.
func (r *Router) Close(ctx context.Context, orderID, accountID string, volume decimal.Decimal) (*models.OrderOutcome, error) {
	if volume.IsNegative() {
		return nil, models.Errf(models.KindInvalidArgument, "negative close volume %s", volume)
	}

	order, err := r.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if accountID != "" && order.AccountID != accountID {
		return nil, models.Errf(models.KindNotFound, "order %s not found on account %s", orderID, accountID)
	}
	if order.Status != models.OrderFilled && order.Status != models.OrderPartial {
		return nil, models.Errf(models.KindPreconditionFailed,
			"order %s is %s, only FILLED or PARTIAL positions close", orderID, order.Status)
	}

	remaining := order.RemainingVolume
	closeVolume := volume
	if closeVolume.IsZero() || closeVolume.GreaterThan(remaining) {
		closeVolume = remaining
	}

	acc, err := r.accounts.GetAccount(ctx, order.AccountID)
	if err != nil {
		return nil, err
	}
	adapter, err := r.adapters.ForAccount(acc)
	if err != nil {
		return nil, err
	}

	mirror := &models.Order{
		ID:         uuid.NewString(),
		UserID:     order.UserID,
		AccountID:  order.AccountID,
		SignalID:   order.SignalID,
		Symbol:     order.Symbol,
		Action:     order.Action.Opposite(),
		Type:       models.OrderTypeMarket,
		Volume:     closeVolume,
		Price:      order.ExecutionPrice,
		Status:     models.OrderPending,
		Commission: decimal.Zero,
		Swap:       decimal.Zero,
		Profit:     decimal.Zero,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.orders.InsertOrder(ctx, mirror); err != nil {
		return nil, models.WrapErr(models.KindInternal, err, "persisting close order for %s", orderID)
	}

	res, err := adapter.Close(ctx, order.BrokerTicket, closeVolume)
	if err != nil {
		return r.reject(ctx, mirror, err.Error())
	}
	if !res.Success {
		return r.reject(ctx, mirror, res.Error)
	}

	outcome, err := r.fill(ctx, mirror, res)
	if err != nil {
		return nil, err
	}

	// Mirror filled: transition the original
	closePrice := mirror.ExecutionPrice
	if closePrice.IsZero() {
		closePrice = order.ExecutionPrice
	}
	tranche := order.TrancheProfit(closePrice, closeVolume, r.sizer.ContractSize)
	now := time.Now().UTC()
	if closeVolume.LessThan(remaining) {
		order.Status = models.OrderPartial
		order.RemainingVolume = remaining.Sub(closeVolume)
		order.Profit = order.Profit.Add(tranche)
	} else {
		order.Status = models.OrderClosed
		order.ClosedAt = &now
		order.ClosedByID = mirror.ID
		order.RemainingVolume = decimal.Zero
		order.Profit = order.Profit.Add(tranche).Sub(order.Commission).Sub(order.Swap)
	}
	if err := r.orders.UpdateOrder(ctx, order); err != nil {
		return nil, models.WrapErr(models.KindInternal, err, "updating closed order %s", orderID)
	}

	r.logger.Info().
		Str("order_id", order.ID).
		Str("mirror_id", mirror.ID).
		Str("status", string(order.Status)).
		Msg("Position closed")

	return outcome, nil
}

// Cancel cancels a not-yet-filled order. Only PENDING and PARTIAL orders
// can be cancelled.
func (r *Router) Cancel(ctx context.Context, orderID, accountID string) (*models.Order, error) {
	order, err := r.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if accountID != "" && order.AccountID != accountID {
		return nil, models.Errf(models.KindNotFound, "order %s not found on account %s", orderID, accountID)
	}
	if !order.Status.CanTransitionTo(models.OrderCancelled) {
		return nil, models.Errf(models.KindPreconditionFailed,
			"order %s is %s and cannot be cancelled", orderID, order.Status)
	}

	order.Status = models.OrderCancelled
	if err := r.orders.UpdateOrder(ctx, order); err != nil {
		return nil, models.WrapErr(models.KindInternal, err, "cancelling order %s", orderID)
	}
	return order, nil
}

// probeHealth runs a best-effort readiness check when the adapter supports
// one, bounded so a slow bridge cannot stall the dispatch.
func (r *Router) probeHealth(ctx context.Context, adapter broker.Adapter, accountID string) {
	prober, ok := adapter.(HealthProber)
	if !ok {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	healthy, err := prober.Healthy(probeCtx)
	if err != nil {
		r.logger.Warn().Err(err).Str("account_id", accountID).Msg("Broker health probe failed")
		return
	}
	if !healthy {
		r.logger.Warn().Str("account_id", accountID).Msg("Broker reports trading unavailable")
	}
}

// fill transitions an order to FILLED with the adapter's execution details.
func (r *Router) fill(ctx context.Context, order *models.Order, res *broker.Result) (*models.OrderOutcome, error) {
	now := time.Now().UTC()
	order.Status = models.OrderFilled
	order.BrokerTicket = res.Ticket
	order.ExecutionPrice = res.ExecutionPrice
	order.Commission = res.Commission
	order.Swap = res.Swap
	order.ExecutedAt = &now
	order.RemainingVolume = order.Volume
	if order.ExecutionPrice.IsZero() {
		order.ExecutionPrice = order.Price
	}

	if err := r.orders.UpdateOrder(ctx, order); err != nil {
		return nil, models.WrapErr(models.KindInternal, err, "updating filled order %s", order.ID)
	}

	r.logger.Info().
		Str("order_id", order.ID).
		Str("account_id", order.AccountID).
		Str("ticket", order.BrokerTicket).
		Str("volume", order.Volume.String()).
		Msg("Order filled")

	return &models.OrderOutcome{
		AccountID: order.AccountID,
		Success:   true,
		Message:   "filled",
		Order:     order,
	}, nil
}

// reject transitions an order to REJECTED, recording the adapter's message.
func (r *Router) reject(ctx context.Context, order *models.Order, reason string) (*models.OrderOutcome, error) {
	order.Status = models.OrderRejected
	order.Reason = reason

	if err := r.orders.UpdateOrder(ctx, order); err != nil {
		return nil, models.WrapErr(models.KindInternal, err, "updating rejected order %s", order.ID)
	}

	r.logger.Warn().
		Str("order_id", order.ID).
		Str("account_id", order.AccountID).
		Str("reason", reason).
		Msg("Order rejected")

	return &models.OrderOutcome{
		AccountID: order.AccountID,
		Success:   false,
		Message:   reason,
		Order:     order,
	}, nil
}

package router

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Alias1177/Trader/internal/store"
	"github.com/Alias1177/Trader/models"
)

// Submitter dispatches one order for one account. The Router implements it;
// tests substitute fakes.
type Submitter interface {
	Submit(ctx context.Context, accountID string, sig *models.Signal) (*models.OrderOutcome, error)
}

// Coordinator fans a signal out to N accounts with bounded parallelism.
// One account's failure never aborts or delays the others, and the outcome
// list keeps the caller's account order regardless of completion timing.
type Coordinator struct {
	submitter Submitter
	accounts  store.AccountStore
	signals   store.SignalStore
	limit     int
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewCoordinator creates an execution coordinator. limit caps concurrent
// dispatches; timeout bounds each per-account dispatch.
func NewCoordinator(submitter Submitter, accounts store.AccountStore, signals store.SignalStore, limit int, timeout time.Duration) *Coordinator {
	if limit <= 0 {
		limit = 4
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Coordinator{
		submitter: submitter,
		accounts:  accounts,
		signals:   signals,
		limit:     limit,
		timeout:   timeout,
		logger:    log.With().Str("component", "execution_coordinator").Logger(),
	}
}

// Execute dispatches the signal to every account id independently. It fails
// fast with PreconditionFailed before any dispatch when the account list is
// empty or no listed account is eligible. Cancelling ctx stops dispatches
// that have not started; in-flight broker calls run to completion so no
// venue is left with an order in an unknown state.
func (c *Coordinator) Execute(ctx context.Context, sig *models.Signal, accountIDs []string) (*models.ExecutionBatch, error) {
	if sig == nil {
		return nil, models.Errf(models.KindInvalidArgument, "signal is required")
	}
	if len(accountIDs) == 0 {
		return nil, models.Errf(models.KindPreconditionFailed, "no accounts to execute on")
	}

	eligible := 0
	for _, id := range accountIDs {
		acc, err := c.accounts.GetAccount(ctx, id)
		if err != nil {
			continue
		}
		if acc.Active && acc.AutoTrading {
			eligible++
		}
	}
	if eligible == 0 {
		return nil, models.Errf(models.KindPreconditionFailed,
			"none of the %d accounts are active with auto-trading enabled", len(accountIDs))
	}

	outcomes := make([]models.OrderOutcome, len(accountIDs))

	g := &errgroup.Group{}
	g.SetLimit(c.limit)

	for i, accountID := range accountIDs {
		i, accountID := i, accountID
		g.Go(func() error {
			// Raised cancellation stops not-yet-started dispatches only
			if err := ctx.Err(); err != nil {
				outcomes[i] = models.OrderOutcome{
					AccountID: accountID,
					Success:   false,
					Message:   "dispatch cancelled before start: " + err.Error(),
				}
				return nil
			}

			// In-flight broker calls must finish even if the caller
			// cancels, bounded by the per-task timeout
			taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
			defer cancel()

			outcomes[i] = c.dispatch(taskCtx, accountID, sig)
			return nil
		})
	}
	_ = g.Wait()

	batch := &models.ExecutionBatch{Signal: sig, Outcomes: outcomes}

	if batch.Succeeded() > 0 && c.signals != nil {
		if err := c.signals.MarkSignalExecuted(ctx, sig.ID, batch.Succeeded(), batch.Failed()); err != nil {
			c.logger.Error().Err(err).Str("signal_id", sig.ID).Msg("Failed to mark signal executed")
		}
	}

	c.logger.Info().
		Str("signal_id", sig.ID).
		Int("accounts", len(accountIDs)).
		Int("succeeded", batch.Succeeded()).
		Int("failed", batch.Failed()).
		Msg("Fan-out complete")

	return batch, nil
}

// ExecuteForUser fans the signal out to every eligible account, optionally
// scoped to one user. Used by the scheduled auto-trading loop.
func (c *Coordinator) ExecuteForUser(ctx context.Context, sig *models.Signal, userID string) (*models.ExecutionBatch, error) {
	accounts, err := c.accounts.ListAutoTradingAccounts(ctx, userID)
	if err != nil {
		return nil, models.WrapErr(models.KindInternal, err, "listing auto-trading accounts")
	}
	ids := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		ids = append(ids, acc.ID)
	}
	if len(ids) == 0 {
		return nil, models.Errf(models.KindPreconditionFailed, "no auto-trading accounts")
	}
	return c.Execute(ctx, sig, ids)
}

// dispatch runs one per-account submit, converting panics, hard errors and
// timeouts into failed outcomes so siblings are never affected.
func (c *Coordinator) dispatch(ctx context.Context, accountID string, sig *models.Signal) (outcome models.OrderOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error().
				Str("account_id", accountID).
				Interface("panic", rec).
				Msg("Dispatch panicked")
			outcome = models.OrderOutcome{
				AccountID: accountID,
				Success:   false,
				Message:   fmt.Sprintf("dispatch panic: %v", rec),
			}
		}
	}()

	res, err := c.submitter.Submit(ctx, accountID, sig)
	if err != nil {
		return models.OrderOutcome{
			AccountID: accountID,
			Success:   false,
			Message:   err.Error(),
		}
	}
	return *res
}

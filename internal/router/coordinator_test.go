package router

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Alias1177/Trader/models"
)

// fakeSubmitter records calls and returns scripted per-account outcomes,
// optionally with artificial latency to exercise concurrency.
type fakeSubmitter struct {
	mu    sync.Mutex
	fail  map[string]bool
	delay map[string]time.Duration
	block map[string]bool
	calls []string

	inFlight    int32
	maxInFlight int32
}

func (f *fakeSubmitter) Submit(ctx context.Context, accountID string, _ *models.Signal) (*models.OrderOutcome, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	for {
		max := atomic.LoadInt32(&f.maxInFlight)
		if cur <= max || atomic.CompareAndSwapInt32(&f.maxInFlight, max, cur) {
			break
		}
	}
	defer atomic.AddInt32(&f.inFlight, -1)

	f.mu.Lock()
	f.calls = append(f.calls, accountID)
	d := f.delay[accountID]
	failed := f.fail[accountID]
	blocked := f.block[accountID]
	f.mu.Unlock()

	if blocked {
		// Hangs until the dispatch context expires, like a stuck bridge
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if d > 0 {
		time.Sleep(d)
	}

	if failed {
		return &models.OrderOutcome{AccountID: accountID, Success: false, Message: "broker rejected"}, nil
	}
	return &models.OrderOutcome{AccountID: accountID, Success: true, Message: "filled"}, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeSignals records MarkSignalExecuted calls.
type fakeSignals struct {
	mu       sync.Mutex
	executed []struct {
		id                 string
		executed, rejected int
	}
}

func (f *fakeSignals) InsertSignal(_ context.Context, _ *models.Signal) error { return nil }

func (f *fakeSignals) GetSignal(_ context.Context, id string) (*models.Signal, error) {
	return nil, models.Errf(models.KindNotFound, "signal %s not found", id)
}

func (f *fakeSignals) ListSignals(_ context.Context, _, _ int) ([]models.Signal, error) {
	return nil, nil
}

func (f *fakeSignals) MarkSignalExecuted(_ context.Context, id string, executed, rejected int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, struct {
		id                 string
		executed, rejected int
	}{id, executed, rejected})
	return nil
}

func (f *fakeSignals) UpdateSignalStatus(_ context.Context, _ string, _ models.SignalStatus) error {
	return nil
}

func coordinatorAccounts(ids ...string) *fakeAccounts {
	accounts := make(map[string]*models.TradingAccount, len(ids))
	for _, id := range ids {
		accounts[id] = testAccount(id)
	}
	return &fakeAccounts{accounts: accounts}
}

func TestExecutePartialFailureIsolation(t *testing.T) {
	// Account A fails slowly, account B fills instantly. B's fill must not
	// be affected and the outcome list must keep the caller's order.
	sub := &fakeSubmitter{
		fail:  map[string]bool{"acc-a": true},
		delay: map[string]time.Duration{"acc-a": 30 * time.Millisecond},
	}
	signals := &fakeSignals{}
	c := NewCoordinator(sub, coordinatorAccounts("acc-a", "acc-b"), signals, 4, time.Second)

	batch, err := c.Execute(context.Background(), testSignal(), []string{"acc-a", "acc-b"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(batch.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(batch.Outcomes))
	}
	if batch.Outcomes[0].AccountID != "acc-a" || batch.Outcomes[0].Success {
		t.Errorf("outcome[0] = %+v, want failed acc-a", batch.Outcomes[0])
	}
	if batch.Outcomes[1].AccountID != "acc-b" || !batch.Outcomes[1].Success {
		t.Errorf("outcome[1] = %+v, want filled acc-b", batch.Outcomes[1])
	}
	if batch.Succeeded() != 1 || batch.Failed() != 1 {
		t.Errorf("counts = %d/%d, want 1/1", batch.Succeeded(), batch.Failed())
	}

	signals.mu.Lock()
	defer signals.mu.Unlock()
	if len(signals.executed) != 1 {
		t.Fatalf("MarkSignalExecuted called %d times, want 1", len(signals.executed))
	}
	if rec := signals.executed[0]; rec.id != "sig-1" || rec.executed != 1 || rec.rejected != 1 {
		t.Errorf("MarkSignalExecuted(%q, %d, %d), want (sig-1, 1, 1)", rec.id, rec.executed, rec.rejected)
	}
}

func TestExecuteOutcomeOrderIsStable(t *testing.T) {
	// Completion order is scrambled by latency; outcome order must not be.
	sub := &fakeSubmitter{delay: map[string]time.Duration{
		"acc-a": 40 * time.Millisecond,
		"acc-b": 0,
		"acc-c": 20 * time.Millisecond,
	}}
	c := NewCoordinator(sub, coordinatorAccounts("acc-a", "acc-b", "acc-c"), &fakeSignals{}, 4, time.Second)

	ids := []string{"acc-a", "acc-b", "acc-c"}
	batch, err := c.Execute(context.Background(), testSignal(), ids)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for i, id := range ids {
		if batch.Outcomes[i].AccountID != id {
			t.Errorf("outcome[%d] = %s, want %s", i, batch.Outcomes[i].AccountID, id)
		}
	}
}

func TestExecuteValidation(t *testing.T) {
	sub := &fakeSubmitter{}
	c := NewCoordinator(sub, coordinatorAccounts("acc-a"), &fakeSignals{}, 4, time.Second)

	t.Run("nil signal", func(t *testing.T) {
		_, err := c.Execute(context.Background(), nil, []string{"acc-a"})
		if !models.IsKind(err, models.KindInvalidArgument) {
			t.Errorf("error kind = %v, want %v", models.KindOf(err), models.KindInvalidArgument)
		}
	})

	t.Run("empty account list", func(t *testing.T) {
		_, err := c.Execute(context.Background(), testSignal(), nil)
		if !models.IsKind(err, models.KindPreconditionFailed) {
			t.Errorf("error kind = %v, want %v", models.KindOf(err), models.KindPreconditionFailed)
		}
	})

	if sub.callCount() != 0 {
		t.Errorf("submitter called %d times during validation, want 0", sub.callCount())
	}
}

func TestExecuteNoneEligible(t *testing.T) {
	inactive := testAccount("acc-a")
	inactive.Active = false
	manual := testAccount("acc-b")
	manual.AutoTrading = false
	accounts := &fakeAccounts{accounts: map[string]*models.TradingAccount{
		"acc-a": inactive,
		"acc-b": manual,
	}}

	sub := &fakeSubmitter{}
	c := NewCoordinator(sub, accounts, &fakeSignals{}, 4, time.Second)

	_, err := c.Execute(context.Background(), testSignal(), []string{"acc-a", "acc-b", "unknown"})
	if !models.IsKind(err, models.KindPreconditionFailed) {
		t.Errorf("error kind = %v, want %v", models.KindOf(err), models.KindPreconditionFailed)
	}
	if sub.callCount() != 0 {
		t.Errorf("submitter called %d times with no eligible accounts, want 0", sub.callCount())
	}
}

func TestExecuteCancelledBeforeStart(t *testing.T) {
	sub := &fakeSubmitter{}
	signals := &fakeSignals{}
	c := NewCoordinator(sub, coordinatorAccounts("acc-a", "acc-b"), signals, 4, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := c.Execute(ctx, testSignal(), []string{"acc-a", "acc-b"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if batch.Succeeded() != 0 {
		t.Errorf("Succeeded() = %d, want 0 after cancellation", batch.Succeeded())
	}
	if sub.callCount() != 0 {
		t.Errorf("submitter called %d times after cancellation, want 0", sub.callCount())
	}

	signals.mu.Lock()
	defer signals.mu.Unlock()
	if len(signals.executed) != 0 {
		t.Errorf("signal marked executed with zero fills")
	}
}

func TestExecutePerAccountTimeout(t *testing.T) {
	// acc-slow hangs past the per-account timeout; its dispatch must turn
	// into a failed outcome without cancelling or delaying acc-fast.
	sub := &fakeSubmitter{block: map[string]bool{"acc-slow": true}}
	signals := &fakeSignals{}
	c := NewCoordinator(sub, coordinatorAccounts("acc-slow", "acc-fast"), signals, 4, 50*time.Millisecond)

	start := time.Now()
	batch, err := c.Execute(context.Background(), testSignal(), []string{"acc-slow", "acc-fast"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Execute() took %v, the timeout did not bound the stuck dispatch", elapsed)
	}

	if len(batch.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(batch.Outcomes))
	}
	slow := batch.Outcomes[0]
	if slow.AccountID != "acc-slow" || slow.Success {
		t.Errorf("outcome[0] = %+v, want failed acc-slow", slow)
	}
	if slow.Message == "" {
		t.Error("timed-out dispatch carries no message")
	}
	if fast := batch.Outcomes[1]; fast.AccountID != "acc-fast" || !fast.Success {
		t.Errorf("outcome[1] = %+v, want filled acc-fast", fast)
	}

	signals.mu.Lock()
	defer signals.mu.Unlock()
	if len(signals.executed) != 1 {
		t.Fatalf("MarkSignalExecuted called %d times, want 1", len(signals.executed))
	}
	if rec := signals.executed[0]; rec.executed != 1 || rec.rejected != 1 {
		t.Errorf("MarkSignalExecuted(%d, %d), want (1, 1)", rec.executed, rec.rejected)
	}
}

func TestExecuteBoundedConcurrency(t *testing.T) {
	ids := []string{"a1", "a2", "a3", "a4", "a5", "a6"}
	delays := make(map[string]time.Duration, len(ids))
	for _, id := range ids {
		delays[id] = 20 * time.Millisecond
	}
	sub := &fakeSubmitter{delay: delays}
	c := NewCoordinator(sub, coordinatorAccounts(ids...), &fakeSignals{}, 2, time.Second)

	if _, err := c.Execute(context.Background(), testSignal(), ids); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if max := atomic.LoadInt32(&sub.maxInFlight); max > 2 {
		t.Errorf("max concurrent dispatches = %d, want at most 2", max)
	}
	if sub.callCount() != len(ids) {
		t.Errorf("submitter called %d times, want %d", sub.callCount(), len(ids))
	}
}

func TestExecuteForUser(t *testing.T) {
	other := testAccount("acc-other")
	other.UserID = "user-2"
	accounts := coordinatorAccounts("acc-a", "acc-b")
	accounts.accounts["acc-other"] = other

	sub := &fakeSubmitter{}
	c := NewCoordinator(sub, accounts, &fakeSignals{}, 4, time.Second)

	batch, err := c.ExecuteForUser(context.Background(), testSignal(), "user-1")
	if err != nil {
		t.Fatalf("ExecuteForUser() error = %v", err)
	}
	if len(batch.Outcomes) != 2 {
		t.Errorf("outcomes = %d, want the two user-1 accounts", len(batch.Outcomes))
	}

	_, err = c.ExecuteForUser(context.Background(), testSignal(), "user-none")
	if !models.IsKind(err, models.KindPreconditionFailed) {
		t.Errorf("error kind = %v, want %v", models.KindOf(err), models.KindPreconditionFailed)
	}
}

package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Alias1177/Trader/models"
)

// SignalStore persists scored signals.
type SignalStore interface {
	InsertSignal(ctx context.Context, sig *models.Signal) error
	GetSignal(ctx context.Context, id string) (*models.Signal, error)
	ListSignals(ctx context.Context, limit, offset int) ([]models.Signal, error)
	MarkSignalExecuted(ctx context.Context, id string, executed, rejected int) error
	UpdateSignalStatus(ctx context.Context, id string, status models.SignalStatus) error
}

// OrderStore persists order rows. Rows are inserted once and transitioned in
// place; they are never deleted.
type OrderStore interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrdersByAccount(ctx context.Context, accountID string) ([]models.Order, error)
	ExpireStaleOrders(ctx context.Context, now time.Time) (int64, error)
}

// AccountStore is the account directory boundary.
type AccountStore interface {
	GetAccount(ctx context.Context, id string) (*models.TradingAccount, error)
	ListAutoTradingAccounts(ctx context.Context, userID string) ([]models.TradingAccount, error)
	SaveAccount(ctx context.Context, acc *models.TradingAccount) error
}

// Store backs all three persistence interfaces with one gorm handle.
type Store struct {
	db *gorm.DB
}

// New wraps a gorm handle in the trading store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertSignal(ctx context.Context, sig *models.Signal) error {
	return s.db.WithContext(ctx).Create(sig).Error
}

func (s *Store) GetSignal(ctx context.Context, id string) (*models.Signal, error) {
	var sig models.Signal
	err := s.db.WithContext(ctx).First(&sig, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.Errf(models.KindNotFound, "signal %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

func (s *Store) ListSignals(ctx context.Context, limit, offset int) ([]models.Signal, error) {
	if limit <= 0 {
		limit = 100
	}
	var signals []models.Signal
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&signals).Error
	return signals, err
}

// MarkSignalExecuted transitions a signal to EXECUTED and records the
// per-account fan-out counts. Everything else on the row stays frozen.
func (s *Store) MarkSignalExecuted(ctx context.Context, id string, executed, rejected int) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Signal{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         models.SignalExecuted,
			"executed_at":    now,
			"executed_count": executed,
			"rejected_count": rejected,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.Errf(models.KindNotFound, "signal %s not found", id)
	}
	return nil
}

func (s *Store) UpdateSignalStatus(ctx context.Context, id string, status models.SignalStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Signal{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.Errf(models.KindNotFound, "signal %s not found", id)
	}
	return nil
}

func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *Store) UpdateOrder(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Save(order).Error
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.Errf(models.KindNotFound, "order %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) ListOrdersByAccount(ctx context.Context, accountID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// ExpireStaleOrders ages out non-terminal orders whose broker-imposed
// expiration has passed without a fill.
func (s *Store) ExpireStaleOrders(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("status IN ?", []models.OrderStatus{models.OrderPending, models.OrderPartial}).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Update("status", models.OrderExpired)
	return res.RowsAffected, res.Error
}

func (s *Store) GetAccount(ctx context.Context, id string) (*models.TradingAccount, error) {
	var acc models.TradingAccount
	err := s.db.WithContext(ctx).First(&acc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.Errf(models.KindNotFound, "account %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// ListAutoTradingAccounts returns active accounts with auto-trading enabled,
// optionally scoped to one user.
func (s *Store) ListAutoTradingAccounts(ctx context.Context, userID string) ([]models.TradingAccount, error) {
	q := s.db.WithContext(ctx).
		Where("active = ? AND auto_trading = ?", true, true)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var accounts []models.TradingAccount
	err := q.Order("created_at ASC").Find(&accounts).Error
	return accounts, err
}

func (s *Store) SaveAccount(ctx context.Context, acc *models.TradingAccount) error {
	return s.db.WithContext(ctx).Save(acc).Error
}

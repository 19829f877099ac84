package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Direction of a trading signal
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// TrendState classifies the prevailing price trend
type TrendState string

const (
	TrendBullish  TrendState = "BULLISH"
	TrendBearish  TrendState = "BEARISH"
	TrendSideways TrendState = "SIDEWAYS"
)

// VolatilityLevel buckets current market volatility
type VolatilityLevel string

const (
	VolatilityLow    VolatilityLevel = "LOW"
	VolatilityMedium VolatilityLevel = "MEDIUM"
	VolatilityHigh   VolatilityLevel = "HIGH"
)

// OrderAction is the side of an order
type OrderAction string

const (
	ActionBuy  OrderAction = "BUY"
	ActionSell OrderAction = "SELL"
)

// Opposite returns the mirror action, used when closing a position.
func (a OrderAction) Opposite() OrderAction {
	if a == ActionBuy {
		return ActionSell
	}
	return ActionBuy
}

// OrderType is the execution style of an order
type OrderType string

const (
	OrderTypeMarket    OrderType = "MARKET"
	OrderTypeLimit     OrderType = "LIMIT"
	OrderTypeStop      OrderType = "STOP"
	OrderTypeStopLimit OrderType = "STOP_LIMIT"
)

// SignalStatus is the lifecycle state of a signal
type SignalStatus string

const (
	SignalGenerated SignalStatus = "GENERATED"
	SignalExecuted  SignalStatus = "EXECUTED"
	SignalClosed    SignalStatus = "CLOSED"
	SignalStopped   SignalStatus = "STOPPED"
)

// BrokerFamily identifies which adapter executes orders for an account
type BrokerFamily string

const (
	BrokerMT4      BrokerFamily = "MT4"
	BrokerMT5      BrokerFamily = "MT5"
	BrokerBinance  BrokerFamily = "BINANCE"
	BrokerBybit    BrokerFamily = "BYBIT"
	BrokerCoinbase BrokerFamily = "COINBASE"
	BrokerAlpaca   BrokerFamily = "ALPACA"
)

// ExecutionThreshold is the confidence above which a signal qualifies for
// automatic execution.
const ExecutionThreshold = 60.0

// Candle represents a single price candle
type Candle struct {
	Datetime string  `json:"datetime"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   int64   `json:"volume,omitempty"`
}

// TechnicalSnapshot holds the indicator state for one symbol at one moment.
// It is the only input of the confidence model.
type TechnicalSnapshot struct {
	Symbol     string          `json:"symbol" gorm:"column:symbol"`
	Timeframe  string          `json:"timeframe" gorm:"column:timeframe"`
	Price      float64         `json:"price" gorm:"column:price"`
	Spread     float64         `json:"spread" gorm:"column:spread"`
	RSI        float64         `json:"rsi" gorm:"column:rsi"`
	MACD       float64         `json:"macd" gorm:"column:macd"`
	MACDSignal float64         `json:"macd_signal" gorm:"column:macd_signal"`
	MACDHist   float64         `json:"macd_hist" gorm:"column:macd_hist"`
	ShortMA    float64         `json:"short_ma" gorm:"column:short_ma"`
	LongMA     float64         `json:"long_ma" gorm:"column:long_ma"`
	Support    float64         `json:"support" gorm:"column:support"`
	Resistance float64         `json:"resistance" gorm:"column:resistance"`
	Trend      TrendState      `json:"trend" gorm:"column:trend"`
	Volatility VolatilityLevel `json:"volatility" gorm:"column:volatility"`
	Volume     int64           `json:"volume" gorm:"column:volume"`
}

// ConfidenceBreakdown holds the five weighted sub-scores that sum to the
// total confidence of a signal.
type ConfidenceBreakdown struct {
	Technical float64 `json:"technical" gorm:"column:technical"` // max 40
	Trend     float64 `json:"trend" gorm:"column:trend_score"`   // max 25
	Volume    float64 `json:"volume" gorm:"column:volume_score"` // max 15
	Momentum  float64 `json:"momentum" gorm:"column:momentum"`   // max 10
	Risk      float64 `json:"risk" gorm:"column:risk_score"`     // max 10
}

// Sum returns the unclamped factor total.
func (b ConfidenceBreakdown) Sum() float64 {
	return b.Technical + b.Trend + b.Volume + b.Momentum + b.Risk
}

// Signal is a scored trading opportunity. Immutable once generated except for
// Status and the execution counters set on EXECUTED/CLOSED transitions.
type Signal struct {
	ID              string              `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol          string              `gorm:"type:text;not null;index" json:"symbol"`
	Direction       Direction           `gorm:"type:text;not null" json:"direction"`
	Confidence      float64             `gorm:"not null" json:"confidence"`
	Breakdown       ConfidenceBreakdown `gorm:"embedded" json:"breakdown"`
	EntryPrice      decimal.Decimal     `gorm:"type:numeric(20,8)" json:"entry_price"`
	StopLoss        decimal.Decimal     `gorm:"type:numeric(20,8)" json:"stop_loss"`
	TakeProfit      decimal.Decimal     `gorm:"type:numeric(20,8)" json:"take_profit"`
	TakeProfits     pq.Float64Array     `gorm:"type:float[]" json:"take_profits,omitempty"`
	RiskRewardRatio float64             `json:"risk_reward_ratio"`
	Strategy        string              `gorm:"type:text" json:"strategy"`
	Timeframe       string              `gorm:"type:text" json:"timeframe"`
	Snapshot        TechnicalSnapshot   `gorm:"embedded;embeddedPrefix:snap_" json:"snapshot"`
	Status          SignalStatus        `gorm:"type:text;not null;index" json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	ExecutedAt      *time.Time          `json:"executed_at,omitempty"`
	ClosedAt        *time.Time          `json:"closed_at,omitempty"`
	ExecutedCount   int                 `json:"executed_count"`
	RejectedCount   int                 `json:"rejected_count"`
}

// ShouldExecute reports whether this signal clears the execution threshold.
func (s *Signal) ShouldExecute() bool {
	return s.Confidence > ExecutionThreshold
}

// BrokerCredentials are the connection parameters for one trading account.
// Owned by the account; never logged in clear text.
type BrokerCredentials struct {
	Host      string `gorm:"column:host" json:"host,omitempty"`
	Port      string `gorm:"column:port" json:"port,omitempty"`
	Login     string `gorm:"column:login" json:"login,omitempty"`
	Password  string `gorm:"column:password" json:"-"`
	Server    string `gorm:"column:server" json:"server,omitempty"`
	APIKey    string `gorm:"column:api_key" json:"-"`
	APISecret string `gorm:"column:api_secret" json:"-"`
}

// Redacted returns a loggable form with secrets masked.
func (c BrokerCredentials) Redacted() string {
	masked := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	return "host=" + c.Host + " port=" + c.Port + " login=" + c.Login +
		" server=" + c.Server + " password=" + masked(c.Password) +
		" api_key=" + masked(c.APIKey)
}

// TradingAccount is one independently configured brokerage account.
type TradingAccount struct {
	ID          string            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Broker      BrokerFamily      `gorm:"type:text;not null" json:"broker"`
	Credentials BrokerCredentials `gorm:"embedded;embeddedPrefix:cred_" json:"credentials"`
	Balance     decimal.Decimal   `gorm:"type:numeric(20,8)" json:"balance"`
	RiskPercent decimal.Decimal   `gorm:"type:numeric(6,3)" json:"risk_percent"`
	AutoTrading bool              `gorm:"not null;default:false" json:"auto_trading"`
	Active      bool              `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Order is one placement attempt against one account. Rows are never deleted,
// only transitioned, so every attempt stays auditable.
type Order struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string          `gorm:"type:uuid;index" json:"user_id"`
	AccountID      string          `gorm:"type:uuid;not null;index" json:"account_id"`
	SignalID       string          `gorm:"type:uuid;index" json:"signal_id,omitempty"`
	Symbol         string          `gorm:"type:text;not null;index" json:"symbol"`
	Action         OrderAction     `gorm:"type:text;not null" json:"action"`
	Type           OrderType       `gorm:"type:text;not null" json:"type"`
	Volume         decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"volume"`
	// RemainingVolume tracks the still-open portion of the position;
	// Volume keeps the originally requested size for the audit trail.
	RemainingVolume decimal.Decimal `gorm:"type:numeric(20,8)" json:"remaining_volume"`
	Price           decimal.Decimal `gorm:"type:numeric(20,8)" json:"price"`
	ExecutionPrice  decimal.Decimal `gorm:"type:numeric(20,8)" json:"execution_price"`
	StopLoss        decimal.Decimal `gorm:"type:numeric(20,8)" json:"stop_loss"`
	TakeProfit      decimal.Decimal `gorm:"type:numeric(20,8)" json:"take_profit"`
	Status          OrderStatus     `gorm:"type:text;not null;index" json:"status"`
	BrokerTicket    string          `gorm:"type:text" json:"broker_ticket,omitempty"`
	Commission      decimal.Decimal `gorm:"type:numeric(20,8)" json:"commission"`
	Swap            decimal.Decimal `gorm:"type:numeric(20,8)" json:"swap"`
	Profit          decimal.Decimal `gorm:"type:numeric(20,8)" json:"profit"`
	Reason          string          `gorm:"type:text" json:"reason,omitempty"`
	ClosedByID      string          `gorm:"type:uuid" json:"closed_by_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	ExecutedAt      *time.Time      `json:"executed_at,omitempty"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
}

// TrancheProfit computes the gross P&L of closing volume units of this
// position at closePrice. sizingUnit is the contract size converting price
// distance into money.
func (o *Order) TrancheProfit(closePrice, volume, sizingUnit decimal.Decimal) decimal.Decimal {
	distance := closePrice.Sub(o.ExecutionPrice)
	if o.Action == ActionSell {
		distance = distance.Neg()
	}
	return distance.Mul(volume).Mul(sizingUnit)
}

// RealizedProfit computes the P&L of closing the full position at closePrice,
// net of commission and swap.
func (o *Order) RealizedProfit(closePrice, sizingUnit decimal.Decimal) decimal.Decimal {
	return o.TrancheProfit(closePrice, o.Volume, sizingUnit).Sub(o.Commission).Sub(o.Swap)
}

// OrderOutcome is the per-account result of one dispatch attempt.
type OrderOutcome struct {
	AccountID string `json:"account_id"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Order     *Order `json:"order,omitempty"`
}

// ExecutionBatch is the transient result of fanning one signal out to a set
// of accounts. Outcomes keep the caller's account order. Aggregate counts are
// derived, never stored.
type ExecutionBatch struct {
	Signal   *Signal        `json:"signal"`
	Outcomes []OrderOutcome `json:"outcomes"`
}

// Succeeded returns the number of filled outcomes.
func (b *ExecutionBatch) Succeeded() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// Failed returns the number of rejected or errored outcomes.
func (b *ExecutionBatch) Failed() int {
	return len(b.Outcomes) - b.Succeeded()
}

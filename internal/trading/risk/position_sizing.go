package risk

import (
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Trader/config"
)

// Sizer converts account risk parameters into an order volume. All money
// math runs on decimals to keep sizing reproducible.
type Sizer struct {
	ContractSize decimal.Decimal // units per 1.0 of volume
	Leverage     decimal.Decimal
	MinVolume    decimal.Decimal
	VolumeStep   decimal.Decimal
	MaxExposure  decimal.Decimal // fraction of balance allowed as margin
}

// NewSizer builds a Sizer from configuration.
func NewSizer(cfg *config.Config) *Sizer {
	return &Sizer{
		ContractSize: decimal.NewFromFloat(cfg.ContractSize),
		Leverage:     decimal.NewFromFloat(cfg.Leverage),
		MinVolume:    decimal.NewFromFloat(cfg.MinVolume),
		VolumeStep:   decimal.NewFromFloat(cfg.VolumeStep),
		MaxExposure:  decimal.NewFromFloat(0.10),
	}
}

var oneHundred = decimal.NewFromInt(100)

// Volume sizes a position so that the loss at the stop approximates
// balance x riskPercent, capped so margin exposure never exceeds MaxExposure
// of the balance, floored to VolumeStep and never below MinVolume. A zero or
// missing stop distance returns the minimum volume.
func (s *Sizer) Volume(balance, riskPercent, entry, stop decimal.Decimal) decimal.Decimal {
	stopDistance := entry.Sub(stop).Abs()
	if stopDistance.IsZero() || entry.IsZero() {
		return s.MinVolume
	}

	// Clamp risk into a sane percentage
	if riskPercent.IsNegative() {
		riskPercent = decimal.Zero
	}
	if riskPercent.GreaterThan(oneHundred) {
		riskPercent = oneHundred
	}

	riskAmount := balance.Mul(riskPercent).Div(oneHundred)
	volume := riskAmount.Div(stopDistance.Mul(s.ContractSize))

	// Margin required per 1.0 of volume at the entry price
	marginPerUnit := s.ContractSize.Mul(entry).Div(s.Leverage)
	maxVolume := balance.Mul(s.MaxExposure).Div(marginPerUnit)
	if volume.GreaterThan(maxVolume) {
		volume = maxVolume
	}

	// Floor to the broker increment
	volume = volume.Div(s.VolumeStep).Floor().Mul(s.VolumeStep)

	if volume.LessThan(s.MinVolume) {
		return s.MinVolume
	}
	return volume
}

// Notional returns the margin exposure of a volume at the given price.
func (s *Sizer) Notional(volume, price decimal.Decimal) decimal.Decimal {
	return volume.Mul(s.ContractSize).Mul(price).Div(s.Leverage)
}

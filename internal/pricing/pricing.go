package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/ecfresh/internal/cart"
	"github.com/Alturino/ecfresh/internal/config"
)

// Config holds the delivery-fee tier and loyalty accrual constants.
// All functions on it are pure: the same cart lines always produce
// the same snapshot.
type Config struct {
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
	LoyaltyRate           decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		FreeDeliveryThreshold: decimal.NewFromInt(500),
		DeliveryFee:           decimal.NewFromInt(40),
		LoyaltyRate:           decimal.NewFromFloat(0.1),
	}
}

func FromAppConfig(cfg config.Pricing) Config {
	return Config{
		FreeDeliveryThreshold: decimal.NewFromInt(cfg.FreeDeliveryThreshold),
		DeliveryFee:           decimal.NewFromInt(cfg.DeliveryFee),
		LoyaltyRate:           decimal.NewFromFloat(cfg.LoyaltyRate),
	}
}

// Snapshot is derived from the cart on every read and never persisted
// on its own; an order captures a copy of it at submission time.
type Snapshot struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Total          decimal.Decimal `json:"total"`
	LoyaltyCredits int64           `json:"loyalty_credits"`
}

func Subtotal(lines []cart.Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Variant.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}

// ComputeDeliveryFee is zero once the subtotal reaches the
// free-delivery threshold, otherwise the flat fee.
func (cfg Config) ComputeDeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(cfg.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return cfg.DeliveryFee
}

// ComputeLoyaltyCredits floors the accrual so the shopper is never
// over-credited by a fractional unit.
func (cfg Config) ComputeLoyaltyCredits(subtotal decimal.Decimal) int64 {
	return subtotal.Mul(cfg.LoyaltyRate).Floor().IntPart()
}

func (cfg Config) ComputeTotal(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(cfg.ComputeDeliveryFee(subtotal))
}

func (cfg Config) Snapshot(lines []cart.Line) Snapshot {
	subtotal := Subtotal(lines)
	fee := cfg.ComputeDeliveryFee(subtotal)
	return Snapshot{
		Subtotal:       subtotal,
		DeliveryFee:    fee,
		Total:          subtotal.Add(fee),
		LoyaltyCredits: cfg.ComputeLoyaltyCredits(subtotal),
	}
}

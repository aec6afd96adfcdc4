package orderstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfileRecord is the shopper profile upserted during checkout,
// keyed by the resolved identity.
type ProfileRecord struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
	Address  string    `json:"address"`
	Landmark string    `json:"landmark"`
	AltPhone string    `json:"alt_phone"`
	PinCode  string    `json:"pin_code"`
}

// OrderRecord captures the pricing snapshot and delivery choices at
// submission time. An order is immutable once inserted.
type OrderRecord struct {
	ID             uuid.UUID       `json:"id"`
	OrderNumber    string          `json:"order_number"`
	UserID         uuid.UUID       `json:"user_id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Address        string          `json:"address"`
	Landmark       string          `json:"landmark"`
	AltPhone       string          `json:"alt_phone"`
	DeliveryDate   string          `json:"delivery_date"`
	TimeSlot       string          `json:"time_slot"`
	PaymentMethod  string          `json:"payment_method"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Total          decimal.Decimal `json:"total"`
	LoyaltyCredits int64           `json:"loyalty_credits"`
}

// LineRecord denormalizes product name, variant size and unit price
// at submission time so later catalog price changes never alter a
// placed order.
type LineRecord struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	VariantID   string          `json:"variant_id"`
	VariantSize string          `json:"variant_size"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int32           `json:"quantity"`
}

type Handle struct {
	ID uuid.UUID
}

// Store is the durable order persistence collaborator. The checkout
// orchestrator is its only caller and drives the three operations
// sequentially, forward-only.
type Store interface {
	UpsertProfile(c context.Context, record ProfileRecord) error
	InsertOrder(c context.Context, record OrderRecord) (Handle, error)
	InsertOrderLines(c context.Context, records []LineRecord) error
}

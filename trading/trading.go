package trading

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Client interface {
	GetTicker(ctx context.Context) (Ticker, error)
	GetOrder(ctx context.Context, id string) (Order, error)
	GetOrders(ctx context.Context, open, cancelled bool, filters map[string]any) (Orders, error)
	PatchOrder(ctx context.Context, id string, patch OrderPatch) (Order, error)
}

type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderTypeBuy  OrderType = "buy"
	OrderTypeSell OrderType = "sell"
)

// Ticker is a market snapshot for a trading pair.
type Ticker struct {
	Pair      string          `json:"pair,omitempty"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Last      decimal.Decimal `json:"last" validate:"required"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Volume    decimal.Decimal `json:"volume"`
	Timestamp time.Time       `json:"timestamp" validate:"required"`
}

type Order struct {
	ID           string          `json:"id" validate:"required"`
	Status       OrderStatus     `json:"status" validate:"required"`
	Type         OrderType       `json:"type,omitempty"`
	Currency     string          `json:"currency,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Amount       decimal.Decimal `json:"amount"`
	FilledAmount decimal.Decimal `json:"filled_amount"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Orders keeps the order the exchange returned them in.
type Orders []Order

// OrderPatch holds the fields to change on an existing order. Fields left
// unset are omitted from the request body, so the exchange leaves them as is.
type OrderPatch struct {
	Status *OrderStatus     `json:"status,omitempty"`
	Price  *decimal.Decimal `json:"price,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

func (p OrderPatch) WithStatus(status OrderStatus) OrderPatch {
	p.Status = &status
	return p
}

func (p OrderPatch) WithPrice(price decimal.Decimal) OrderPatch {
	p.Price = &price
	return p
}

func (p OrderPatch) WithAmount(amount decimal.Decimal) OrderPatch {
	p.Amount = &amount
	return p
}

// IsEmpty reports whether no field has been set.
func (p OrderPatch) IsEmpty() bool {
	return p.Status == nil && p.Price == nil && p.Amount == nil
}

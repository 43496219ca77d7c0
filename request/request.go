// Package request holds the typed models sent to the exchange. Each model
// knows its own path and serializes to a JSON object that contains only the
// fields that were explicitly set.
package request

import (
	"net/url"

	"bitcoinvietnam-go/trading"
)

const (
	tickerPath = "/ticker"
	orderPath  = "/order/"
	ordersPath = "/orders"
)

type Request interface {
	Path() string
}

// Ticker has no body.
type Ticker struct{}

func (Ticker) Path() string {
	return tickerPath
}

// GetOrder has no body; the id travels in the path.
type GetOrder struct {
	id string
}

func (r GetOrder) Path() string {
	return orderPath + url.PathEscape(r.id)
}

func (r GetOrder) ID() string {
	return r.id
}

// PatchOrder serializes as the flat set of fields present on the patch.
type PatchOrder struct {
	id string
	trading.OrderPatch
}

func (r PatchOrder) Path() string {
	return orderPath + url.PathEscape(r.id)
}

func (r PatchOrder) ID() string {
	return r.id
}

// Factory builds request models. It carries no state.
type Factory struct{}

func NewFactory() Factory {
	return Factory{}
}

func (Factory) Ticker() Ticker {
	return Ticker{}
}

func (Factory) GetOrder(id string) GetOrder {
	return GetOrder{id: id}
}

func (Factory) GetOrders(open, cancelled bool) *GetOrders {
	return NewGetOrders(open, cancelled)
}

func (Factory) PatchOrder(id string, patch trading.OrderPatch) PatchOrder {
	return PatchOrder{id: id, OrderPatch: patch}
}

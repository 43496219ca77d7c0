package sandbox

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitcoinvietnam-go/trading"
)

func newTestBook() *Book {
	b := NewBook()
	b.Add(trading.Order{ID: "1", Type: trading.OrderTypeBuy, Currency: "BTC"})
	b.Add(trading.Order{ID: "2", Type: trading.OrderTypeSell, Currency: "BTC", Status: trading.OrderStatusCancelled})
	b.Add(trading.Order{ID: "3", Type: trading.OrderTypeBuy, Currency: "ETH", Status: trading.OrderStatusFilled})
	b.Add(trading.Order{ID: "4", Type: trading.OrderTypeSell, Currency: "ETH"})
	return b
}

func ids(orders trading.Orders) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestBook_Add(t *testing.T) {
	b := NewBook()

	order := b.Add(trading.Order{Currency: "BTC"})
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, trading.OrderStatusOpen, order.Status)
	assert.False(t, order.CreatedAt.IsZero())
	assert.Equal(t, order.CreatedAt, order.UpdatedAt)

	got, ok := b.Get(order.ID)
	require.True(t, ok)
	assert.Equal(t, order, got)
}

func TestBook_List(t *testing.T) {
	testCases := []struct {
		name     string
		query    Query
		expected []string
	}{
		{name: "open", query: Query{Open: true}, expected: []string{"1", "3", "4"}},
		{name: "open and cancelled", query: Query{Open: true, Cancelled: true}, expected: []string{"1", "2", "3", "4"}},
		{name: "cancelled only", query: Query{Cancelled: true}, expected: []string{"2", "3"}},
		{name: "status overrides flags", query: Query{Status: trading.OrderStatusCancelled}, expected: []string{"2"}},
		{name: "currency", query: Query{Open: true, Cancelled: true, Currency: "ETH"}, expected: []string{"3", "4"}},
		{name: "type", query: Query{Open: true, Type: trading.OrderTypeSell}, expected: []string{"4"}},
		{name: "limit and offset", query: Query{Open: true, Cancelled: true, Offset: 1, Limit: 2}, expected: []string{"2", "3"}},
		{name: "nothing", query: Query{Currency: "XRP"}, expected: []string{}},
	}

	b := newTestBook()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ids(b.List(tc.query)))
		})
	}
}

func TestBook_Patch(t *testing.T) {
	b := newTestBook()
	before, _ := b.Get("1")
	b.now = func() time.Time { return before.UpdatedAt.Add(time.Minute) }

	order, err := b.Patch("1", trading.OrderPatch{}.WithAmount(decimal.RequireFromString("0.3")))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.3").Equal(order.Amount))
	assert.Equal(t, trading.OrderStatusOpen, order.Status)
	assert.Equal(t, before.Price, order.Price)
	assert.Equal(t, before.UpdatedAt.Add(time.Minute), order.UpdatedAt)

	_, err = b.Patch("2", trading.OrderPatch{}.WithStatus(trading.OrderStatusOpen))
	assert.ErrorIs(t, err, ErrOrderNotOpen)

	_, err = b.Patch("missing", trading.OrderPatch{})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	cancelled, _ := b.Get("2")
	order, err = b.Patch("2", trading.OrderPatch{})
	require.NoError(t, err)
	assert.Equal(t, cancelled, order)
}

func TestBook_ListCreatedRange(t *testing.T) {
	b := NewBook()
	for i, id := range []string{"a", "b", "c"} {
		b.Add(trading.Order{ID: id, CreatedAt: time.Unix(int64(1000*(i+1)), 0).UTC()})
	}

	testCases := []struct {
		name     string
		query    Query
		expected []string
	}{
		{name: "unbounded", query: Query{Open: true}, expected: []string{"a", "b", "c"}},
		{name: "from", query: Query{Open: true, From: 2000}, expected: []string{"b", "c"}},
		{name: "to", query: Query{Open: true, To: 2000}, expected: []string{"a", "b"}},
		{name: "from and to", query: Query{Open: true, From: 1500, To: 2500}, expected: []string{"b"}},
		{name: "after everything", query: Query{Open: true, From: 4000}, expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ids(b.List(tc.query)))
		})
	}
}

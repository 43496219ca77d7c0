package sandbox

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"bitcoinvietnam-go/trading"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderNotOpen  = errors.New("order is not open")
)

// Query selects orders from the book. Open and Cancelled pick orders in
// those states; filled orders are always listed. Status, when set,
// replaces both flags. From and To bound CreatedAt in unix seconds,
// both inclusive, and zero leaves that side open.
type Query struct {
	Open      bool
	Cancelled bool
	Status    trading.OrderStatus
	Type      trading.OrderType
	Currency  string
	Limit     int
	Offset    int
	From      int64
	To        int64
}

// Book is the sandbox's order store. Orders list in insertion order.
type Book struct {
	mu     sync.RWMutex
	ticker trading.Ticker
	orders map[string]trading.Order
	ids    []string
	now    func() time.Time
}

func NewBook() *Book {
	now := time.Now().UTC()
	return &Book{
		ticker: trading.Ticker{
			Pair:      "BTC_VND",
			Bid:       decimal.RequireFromString("1520000000"),
			Ask:       decimal.RequireFromString("1525000000"),
			Last:      decimal.RequireFromString("1522500000"),
			High:      decimal.RequireFromString("1540000000"),
			Low:       decimal.RequireFromString("1498000000"),
			Volume:    decimal.RequireFromString("12.5731"),
			Timestamp: now.Truncate(time.Second),
		},
		orders: make(map[string]trading.Order),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (b *Book) SetTicker(ticker trading.Ticker) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticker = ticker
}

func (b *Book) Ticker() trading.Ticker {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ticker
}

// Add stores order, filling in an id, an open status and timestamps when
// they are missing.
func (b *Book) Add(order trading.Order) trading.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = trading.OrderStatusOpen
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = b.now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	if _, ok := b.orders[order.ID]; !ok {
		b.ids = append(b.ids, order.ID)
	}
	b.orders[order.ID] = order
	return order
}

func (b *Book) Get(id string) (trading.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	order, ok := b.orders[id]
	return order, ok
}

func (b *Book) List(q Query) trading.Orders {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := trading.Orders{}
	skipped := 0
	for _, id := range b.ids {
		order := b.orders[id]
		if !q.matches(order) {
			continue
		}
		if skipped < q.Offset {
			skipped++
			continue
		}
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		out = append(out, order)
	}
	return out
}

// Patch applies the set fields of patch to an open order. An empty patch
// returns the order as stored, whatever its status.
func (b *Book) Patch(id string, patch trading.OrderPatch) (trading.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orders[id]
	if !ok {
		return trading.Order{}, errors.Wrap(ErrOrderNotFound, id)
	}
	if patch.IsEmpty() {
		return order, nil
	}
	if order.Status != trading.OrderStatusOpen {
		return trading.Order{}, errors.Wrapf(ErrOrderNotOpen, "%s is %s", id, order.Status)
	}

	if patch.Status != nil {
		order.Status = *patch.Status
	}
	if patch.Price != nil {
		order.Price = *patch.Price
	}
	if patch.Amount != nil {
		order.Amount = *patch.Amount
	}
	order.UpdatedAt = b.now()

	b.orders[id] = order
	return order, nil
}

func (q Query) matches(order trading.Order) bool {
	if q.Status != "" {
		if order.Status != q.Status {
			return false
		}
	} else {
		switch order.Status {
		case trading.OrderStatusOpen:
			if !q.Open {
				return false
			}
		case trading.OrderStatusCancelled:
			if !q.Cancelled {
				return false
			}
		}
	}
	if q.Type != "" && order.Type != q.Type {
		return false
	}
	if q.Currency != "" && order.Currency != q.Currency {
		return false
	}
	created := order.CreatedAt.Unix()
	if q.From > 0 && created < q.From {
		return false
	}
	if q.To > 0 && created > q.To {
		return false
	}
	return true
}

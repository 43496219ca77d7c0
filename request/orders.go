package request

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"bitcoinvietnam-go/trading"
)

var (
	ErrUnknownFilter      = errors.New("unknown order filter")
	ErrInvalidFilterValue = errors.New("invalid order filter value")
)

// GetOrders lists orders. Open and Cancelled are always sent; every other
// filter is sent only once it has been set.
type GetOrders struct {
	Open      bool                 `json:"open"`
	Cancelled bool                 `json:"cancelled"`
	Status    *trading.OrderStatus `json:"status,omitempty"`
	Type      *trading.OrderType   `json:"type,omitempty"`
	Currency  *string              `json:"currency,omitempty"`
	Limit     *int64               `json:"limit,omitempty"`
	Offset    *int64               `json:"offset,omitempty"`
	From      *int64               `json:"from,omitempty"`
	To        *int64               `json:"to,omitempty"`
}

func NewGetOrders(open, cancelled bool) *GetOrders {
	return &GetOrders{Open: open, Cancelled: cancelled}
}

func (r *GetOrders) Path() string {
	return ordersPath
}

func (r *GetOrders) SetOpen(open bool) *GetOrders {
	r.Open = open
	return r
}

func (r *GetOrders) SetCancelled(cancelled bool) *GetOrders {
	r.Cancelled = cancelled
	return r
}

func (r *GetOrders) SetStatus(status trading.OrderStatus) *GetOrders {
	r.Status = &status
	return r
}

func (r *GetOrders) SetType(orderType trading.OrderType) *GetOrders {
	r.Type = &orderType
	return r
}

func (r *GetOrders) SetCurrency(currency string) *GetOrders {
	r.Currency = &currency
	return r
}

func (r *GetOrders) SetLimit(limit int64) *GetOrders {
	r.Limit = &limit
	return r
}

func (r *GetOrders) SetOffset(offset int64) *GetOrders {
	r.Offset = &offset
	return r
}

// SetFrom and SetTo take unix seconds.
func (r *GetOrders) SetFrom(from int64) *GetOrders {
	r.From = &from
	return r
}

func (r *GetOrders) SetTo(to int64) *GetOrders {
	r.To = &to
	return r
}

type filterSetter func(r *GetOrders, value any) error

// filters maps a lower-cased filter name to the setter that applies it.
var filters = map[string]filterSetter{
	"open": func(r *GetOrders, value any) error {
		b, err := toBool(value)
		if err != nil {
			return err
		}
		r.SetOpen(b)
		return nil
	},
	"cancelled": func(r *GetOrders, value any) error {
		b, err := toBool(value)
		if err != nil {
			return err
		}
		r.SetCancelled(b)
		return nil
	},
	"status": func(r *GetOrders, value any) error {
		s, err := toString(value)
		if err != nil {
			return err
		}
		r.SetStatus(trading.OrderStatus(s))
		return nil
	},
	"type": func(r *GetOrders, value any) error {
		s, err := toString(value)
		if err != nil {
			return err
		}
		r.SetType(trading.OrderType(s))
		return nil
	},
	"currency": func(r *GetOrders, value any) error {
		s, err := toString(value)
		if err != nil {
			return err
		}
		r.SetCurrency(s)
		return nil
	},
	"limit":  intFilter((*GetOrders).SetLimit),
	"offset": intFilter((*GetOrders).SetOffset),
	"from":   intFilter((*GetOrders).SetFrom),
	"to":     intFilter((*GetOrders).SetTo),
}

func intFilter(set func(*GetOrders, int64) *GetOrders) filterSetter {
	return func(r *GetOrders, value any) error {
		n, err := toInt(value)
		if err != nil {
			return err
		}
		set(r, n)
		return nil
	}
}

// Filters returns the recognised filter names in sorted order.
func Filters() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply sets the filter named by key. Keys are matched case-insensitively.
// An unrecognised key leaves the request untouched and returns an error
// wrapping ErrUnknownFilter; callers decide whether that matters.
func (r *GetOrders) Apply(key string, value any) error {
	set, ok := filters[strings.ToLower(key)]
	if !ok {
		return errors.Wrapf(ErrUnknownFilter, "filter %q", key)
	}
	if err := set(r, value); err != nil {
		return errors.Wrapf(err, "filter %q", key)
	}
	return nil
}

func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case decimal.Decimal:
		return v.String(), nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		n, err := toInt(v)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	}
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return "", errors.Wrapf(ErrInvalidFilterValue, "unsupported type %T", value)
}

func toInt(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, errors.Wrapf(ErrInvalidFilterValue, "%d overflows int64", v)
		}
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, errors.Wrapf(ErrInvalidFilterValue, "%d overflows int64", v)
		}
		return int64(v), nil
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case decimal.Decimal:
		if !v.IsInteger() {
			return 0, errors.Wrapf(ErrInvalidFilterValue, "%s is not an integer", v)
		}
		return v.IntPart(), nil
	case json.Number:
		return parseInt(v.String())
	case string:
		return parseInt(v)
	}
	return 0, errors.Wrapf(ErrInvalidFilterValue, "unsupported type %T", value)
}

// float64(math.MaxInt64) rounds up to 2^63, which no int64 holds.
func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, errors.Wrapf(ErrInvalidFilterValue, "%v is not an integer", f)
	}
	return int64(f), nil
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidFilterValue, "%q is not an integer", s)
	}
	return n, nil
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, errors.Wrapf(ErrInvalidFilterValue, "%q is not a boolean", v)
		}
		return b, nil
	}
	n, err := toInt(value)
	if err != nil {
		return false, errors.Wrapf(ErrInvalidFilterValue, "unsupported type %T", value)
	}
	return n != 0, nil
}

package bitcoinvietnam

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"bitcoinvietnam-go/request"
	"bitcoinvietnam-go/serializer"
	"bitcoinvietnam-go/trading"
	"bitcoinvietnam-go/transport"
)

const DefaultURL = "https://www.bitcoinvietnam.com.vn/api"

type Config struct {
	URL    string
	APIKey string
	// Timeout applies to the default transport only.
	Timeout time.Duration
	// StrictFilters makes GetOrders fail on filter names it does not know
	// instead of dropping them.
	StrictFilters bool

	Transport  transport.Transport
	Serializer serializer.Serializer
	Logger     logrus.FieldLogger
}

type Client struct {
	config     Config
	factory    request.Factory
	serializer serializer.Serializer
	logger     logrus.FieldLogger

	transportOnce sync.Once
	transport     transport.Transport
}

var _ trading.Client = (*Client)(nil)

func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.URL == "" {
		config.URL = DefaultURL
	}
	config.URL = strings.TrimSuffix(config.URL, "/")

	c := &Client{
		config:     config,
		factory:    request.NewFactory(),
		serializer: config.Serializer,
		logger:     config.Logger,
	}
	if c.serializer == nil {
		c.serializer = serializer.New()
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}

	return c, nil
}

func (c *Client) GetTicker(ctx context.Context) (trading.Ticker, error) {
	body, err := c.sendRequest(ctx, http.MethodGet, c.factory.Ticker())
	if err != nil {
		return trading.Ticker{}, err
	}

	return serializer.Decode[trading.Ticker](c.serializer, body)
}

func (c *Client) GetOrder(ctx context.Context, id string) (trading.Order, error) {
	body, err := c.sendRequest(ctx, http.MethodGet, c.factory.GetOrder(id))
	if err != nil {
		return trading.Order{}, err
	}

	return serializer.Decode[trading.Order](c.serializer, body)
}

// GetOrders lists orders. Each filter is applied when the request model
// knows its name; unknown names are dropped unless StrictFilters is set.
// A known filter with an unusable value always fails.
func (c *Client) GetOrders(ctx context.Context, open, cancelled bool, filters map[string]any) (trading.Orders, error) {
	req := c.factory.GetOrders(open, cancelled)

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		err := req.Apply(key, filters[key])
		switch {
		case err == nil:
		case errors.Is(err, request.ErrUnknownFilter) && !c.config.StrictFilters:
			c.logger.WithField("filter", key).Debug("dropping unknown order filter")
		case errors.Is(err, request.ErrUnknownFilter):
			return nil, errors.Wrapf(err, "known filters are %s", strings.Join(request.Filters(), ", "))
		default:
			return nil, err
		}
	}

	body, err := c.sendRequest(ctx, http.MethodGet, req)
	if err != nil {
		return nil, err
	}

	return serializer.Decode[trading.Orders](c.serializer, body)
}

func (c *Client) PatchOrder(ctx context.Context, id string, patch trading.OrderPatch) (trading.Order, error) {
	body, err := c.sendRequest(ctx, http.MethodPatch, c.factory.PatchOrder(id, patch))
	if err != nil {
		return trading.Order{}, err
	}

	return serializer.Decode[trading.Order](c.serializer, body)
}

// orderRequest is a request addressed to a single order.
type orderRequest interface {
	ID() string
}

// sendRequest is the only place a call leaves the client, so every request
// carries the same headers.
func (c *Client) sendRequest(ctx context.Context, method string, req request.Request) ([]byte, error) {
	payload, err := c.serializer.ToPayload(req)
	if err != nil {
		return nil, errors.Wrapf(err, "serialize %s %s", method, req.Path())
	}

	url := c.config.URL + req.Path()
	headers := map[string]string{
		"Content-Type": "application/json",
		"APIKEY":       c.config.APIKey,
	}

	started := time.Now()
	res, err := c.httpTransport().Send(ctx, method, url, headers, payload)
	if err != nil {
		var transportErr *transport.TransportError
		if !errors.As(err, &transportErr) {
			err = &transport.TransportError{Method: method, URL: url, Err: err}
		}
		return nil, err
	}

	fields := logrus.Fields{
		"method":  method,
		"path":    req.Path(),
		"status":  res.StatusCode,
		"elapsed": time.Since(started),
	}
	if r, ok := req.(orderRequest); ok {
		fields["order"] = r.ID()
	}
	c.logger.WithFields(fields).Debug("exchange response")

	if !res.IsSuccess() {
		return nil, &APIError{StatusCode: res.StatusCode, Body: res.Body}
	}

	return res.Body, nil
}

// httpTransport returns the injected transport, or creates the default one
// on first use and keeps it for the life of the client.
func (c *Client) httpTransport() transport.Transport {
	c.transportOnce.Do(func() {
		c.transport = c.config.Transport
		if c.transport == nil {
			c.transport = transport.NewResty(c.config.Timeout)
		}
	})
	return c.transport
}

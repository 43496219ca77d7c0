package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const DefaultTimeout = 30 * time.Second

type Transport interface {
	Send(ctx context.Context, method, url string, headers map[string]string, body map[string]any) (*Response, error)
}

type Response struct {
	StatusCode int
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// TransportError means the call never produced an HTTP response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type restyTransport struct {
	client *resty.Client
}

// NewResty returns a Transport over resty. Retries are left disabled.
// GET payloads travel as query parameters, never as a request body.
func NewResty(timeout time.Duration) Transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &restyTransport{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0),
	}
}

func (t *restyTransport) Send(ctx context.Context, method, url string, headers map[string]string, body map[string]any) (*Response, error) {
	method = strings.ToUpper(method)

	r := t.client.R().SetHeaders(headers)
	if ctx != nil {
		r.SetContext(ctx)
	}
	if body != nil {
		if method == http.MethodGet {
			r.SetQueryParamsFromValues(toValues(body))
		} else {
			r.SetBody(body)
		}
	}

	res, err := r.Execute(method, url)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: errors.WithStack(err)}
	}

	return &Response{
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}, nil
}

// toValues flattens a JSON object into query parameters. Nested values are
// not expected from request models and are formatted with %v.
func toValues(body map[string]any) map[string][]string {
	v := make(map[string][]string, len(body))
	for k, val := range body {
		switch t := val.(type) {
		case nil:
			continue
		case []any:
			for _, item := range t {
				v[k] = append(v[k], fmt.Sprint(item))
			}
		default:
			v[k] = []string{fmt.Sprint(t)}
		}
	}
	return v
}

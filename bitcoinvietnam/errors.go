package bitcoinvietnam

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"bitcoinvietnam-go/request"
	"bitcoinvietnam-go/serializer"
	"bitcoinvietnam-go/transport"
)

var (
	ErrMissingAPIKey = errors.New("bitcoinvietnam: api key is required")

	// ErrNotFound matches, via errors.Is, an APIError with status 404.
	ErrNotFound = errors.New("bitcoinvietnam: not found")

	ErrUnknownFilter      = request.ErrUnknownFilter
	ErrInvalidFilterValue = request.ErrInvalidFilterValue
)

type (
	TransportError       = transport.TransportError
	DeserializationError = serializer.DeserializationError
)

// APIError is a non-2xx response. Body is the raw response body.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("get http response code %d and body %s", e.StatusCode, e.Body)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

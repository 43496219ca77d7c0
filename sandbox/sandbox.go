// Package sandbox serves an in-memory imitation of the exchange REST API,
// for local development and end-to-end tests of the client.
package sandbox

import (
	"context"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Sandbox struct {
	server   *http.Server
	listener net.Listener
	handler  *handler
}

func NewSandbox(listener net.Listener, apiKey string, logger logrus.FieldLogger) *Sandbox {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Sandbox{
		server:   &http.Server{},
		handler:  newHandler(apiKey, NewBook(), logger),
		listener: listener,
	}
}

func (f *Sandbox) Book() *Book {
	return f.handler.book
}

// URL is the base URL clients should be configured with.
func (f *Sandbox) URL() string {
	return "http://" + f.listener.Addr().String()
}

func (f *Sandbox) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(f.handler.authenticate)

	r.HandleFunc("/ticker", f.handler.GetTicker).Methods(http.MethodGet)
	r.HandleFunc("/orders", f.handler.GetOrders).Methods(http.MethodGet)
	r.HandleFunc("/order/{id}", f.handler.GetOrder).Methods(http.MethodGet)
	r.HandleFunc("/order/{id}", f.handler.PatchOrder).Methods(http.MethodPatch)

	return r
}

// Serve blocks until the server is shut down.
func (f *Sandbox) Serve(_ context.Context) error {
	f.server.Handler = f.Router()
	f.handler.logger.WithField("addr", f.listener.Addr().String()).Info("sandbox listening")

	err := f.server.Serve(f.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (f *Sandbox) Shutdown(ctx context.Context) error {
	return f.server.Shutdown(ctx)
}

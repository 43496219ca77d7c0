package sandbox

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"bitcoinvietnam-go/trading"
)

type handler struct {
	apiKey string
	book   *Book
	logger logrus.FieldLogger
}

func newHandler(apiKey string, book *Book, logger logrus.FieldLogger) *handler {
	return &handler{apiKey: apiKey, book: book, logger: logger}
}

func (h *handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("APIKEY") != h.apiKey {
			h.writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) GetTicker(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.book.Ticker())
}

func (h *handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.book.Get(mux.Vars(r)["id"])
	if !ok {
		h.writeError(w, http.StatusNotFound, "not found")
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	q := Query{
		Status:   trading.OrderStatus(values.Get("status")),
		Type:     trading.OrderType(values.Get("type")),
		Currency: values.Get("currency"),
	}

	var err error
	if q.Open, err = boolParam(values.Get("open"), true); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.Cancelled, err = boolParam(values.Get("cancelled"), false); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.Limit, err = intParam(values.Get("limit")); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.Offset, err = intParam(values.Get("offset")); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.From, err = unixParam(values.Get("from")); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.To, err = unixParam(values.Get("to")); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, h.book.List(q))
}

func (h *handler) PatchOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var patch trading.OrderPatch
	if len(body) > 0 {
		if err := json.Unmarshal(body, &patch); err != nil {
			h.writeError(w, http.StatusBadRequest, "malformed order patch")
			return
		}
	}

	order, err := h.book.Patch(mux.Vars(r)["id"], patch)
	switch {
	case errors.Is(err, ErrOrderNotFound):
		h.writeError(w, http.StatusNotFound, "not found")
		return
	case errors.Is(err, ErrOrderNotOpen):
		h.writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Warn("write sandbox response")
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func boolParam(raw string, fallback bool) (bool, error) {
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Errorf("%q is not a boolean", raw)
	}
	return b, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Errorf("%q is not a non-negative integer", raw)
	}
	return n, nil
}

func unixParam(raw string) (int64, error) {
	n, err := intParam(raw)
	return int64(n), err
}

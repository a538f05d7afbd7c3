package http

import (
	"context"
	"net/http"

	"rental-booking-backend/internal/metrics"
	"rental-booking-backend/internal/service"
	"rental-booking-backend/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// NewRouter wires the REST API onto a gorilla/mux router.
func NewRouter(items service.ItemService, bookings service.BookingService, currencies service.CurrencyService, health HealthCheck) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestID, metrics.Middleware, tracing.Middleware, accessLog)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	ih := &itemHandler{svc: items}
	api.HandleFunc("/items", ih.list).Methods(http.MethodGet)
	api.HandleFunc("/items", ih.create).Methods(http.MethodPost)
	api.HandleFunc("/items/{id:[0-9]+}", ih.get).Methods(http.MethodGet)
	api.HandleFunc("/items/{id:[0-9]+}", ih.update).Methods(http.MethodPut)
	api.HandleFunc("/items/{id:[0-9]+}", ih.delete).Methods(http.MethodDelete)

	bh := &bookingHandler{svc: bookings}
	api.HandleFunc("/bookings", bh.list).Methods(http.MethodGet)
	api.HandleFunc("/bookings", bh.create).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}", bh.get).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}", bh.update).Methods(http.MethodPut)
	api.HandleFunc("/bookings/{id:[0-9]+}", bh.delete).Methods(http.MethodDelete)
	api.HandleFunc("/bookings/{id:[0-9]+}/confirm", bh.transition(bookings.ConfirmBooking)).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/cancel", bh.transition(bookings.CancelBooking)).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/complete", bh.transition(bookings.CompleteBooking)).Methods(http.MethodPost)

	ch := &currencyHandler{svc: currencies}
	api.HandleFunc("/currency/{code}", ch.exchangeInfo).Methods(http.MethodGet)

	return router
}

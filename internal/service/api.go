package service

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Trader/internal/router"
	"github.com/Alias1177/Trader/internal/service/accounts"
	"github.com/Alias1177/Trader/internal/service/orders"
	"github.com/Alias1177/Trader/internal/service/signals"
	"github.com/Alias1177/Trader/internal/signal"
	"github.com/Alias1177/Trader/internal/store"
)

// APIServer wires the trading handlers onto one mux router.
type APIServer struct {
	address     string
	st          *store.Store
	generator   *signal.Generator
	orderRouter *router.Router
	coordinator *router.Coordinator
}

func NewAPIServer(address string, st *store.Store, generator *signal.Generator, orderRouter *router.Router, coordinator *router.Coordinator) *APIServer {
	return &APIServer{
		address:     address,
		st:          st,
		generator:   generator,
		orderRouter: orderRouter,
		coordinator: coordinator,
	}
}

func (s *APIServer) Run() error {
	r := mux.NewRouter()
	subrouter := r.PathPrefix("/api/v1").Subrouter()

	signalHandler := signals.NewSignalHandler(s.generator, s.coordinator, s.st)
	signalHandler.RegisterRoutes(subrouter)

	orderHandler := orders.NewOrderHandler(s.orderRouter, s.st)
	orderHandler.RegisterRoutes(subrouter)

	accountHandler := accounts.NewAccountHandler(s.st)
	accountHandler.RegisterRoutes(subrouter)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	log.Info().Str("address", s.address).Msg("Server running")
	return http.ListenAndServe(s.address, r)
}

package orders

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Trader/internal/router"
	"github.com/Alias1177/Trader/internal/store"
	"github.com/Alias1177/Trader/internal/utils"
)

// OrderHandler exposes order status, listing, closing and cancellation.
type OrderHandler struct {
	router *router.Router
	orders store.OrderStore
}

func NewOrderHandler(orderRouter *router.Router, orders store.OrderStore) *OrderHandler {
	return &OrderHandler{router: orderRouter, orders: orders}
}

func (h *OrderHandler) RegisterRoutes(r *mux.Router) {
	orderRouter := r.PathPrefix("/orders").Subrouter()

	orderRouter.HandleFunc("/account/{accountID}", h.GetOrdersByAccount).Methods("GET")
	orderRouter.HandleFunc("/{id}", h.GetOrderByID).Methods("GET")
	orderRouter.HandleFunc("/{id}/close", h.ClosePosition).Methods("POST")
	orderRouter.HandleFunc("/{id}/cancel", h.CancelOrder).Methods("POST")
}

func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) GetOrdersByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountID"]

	list, err := h.orders.ListOrdersByAccount(r.Context(), accountID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, list)
}

type closeRequest struct {
	AccountID string          `json:"account_id"`
	Volume    decimal.Decimal `json:"volume"`
}

// ClosePosition closes a filled order, fully or for a partial volume.
func (h *OrderHandler) ClosePosition(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req closeRequest
	if r.Body != nil {
		// An empty body closes the full volume
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	outcome, err := h.router.Close(r.Context(), id, req.AccountID, req.Volume)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, outcome)
}

type cancelRequest struct {
	AccountID string `json:"account_id"`
}

// CancelOrder cancels a PENDING or PARTIAL order on explicit user request.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req cancelRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	order, err := h.router.Cancel(r.Context(), id, req.AccountID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, order)
}

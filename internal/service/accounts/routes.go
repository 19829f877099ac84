package accounts

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Trader/internal/store"
	"github.com/Alias1177/Trader/internal/utils"
	"github.com/Alias1177/Trader/models"
)

// AccountHandler is the trading-account directory boundary.
type AccountHandler struct {
	accounts store.AccountStore
}

func NewAccountHandler(accounts store.AccountStore) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) RegisterRoutes(r *mux.Router) {
	accountRouter := r.PathPrefix("/accounts").Subrouter()

	accountRouter.HandleFunc("", h.CreateAccount).Methods("POST")
	accountRouter.HandleFunc("/{id}", h.GetAccount).Methods("GET")
	accountRouter.HandleFunc("/{id}", h.UpdateAccount).Methods("PUT")
}

type accountRequest struct {
	UserID      string                   `json:"user_id"`
	Broker      models.BrokerFamily      `json:"broker"`
	Credentials models.BrokerCredentials `json:"credentials"`
	Balance     decimal.Decimal          `json:"balance"`
	RiskPercent decimal.Decimal          `json:"risk_percent"`
	AutoTrading bool                     `json:"auto_trading"`
	Active      *bool                    `json:"active,omitempty"`
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, models.Errf(models.KindInvalidArgument, "invalid request body"))
		return
	}
	if req.UserID == "" || req.Broker == "" {
		utils.WriteError(w, models.Errf(models.KindInvalidArgument, "user_id and broker are required"))
		return
	}

	now := time.Now().UTC()
	acc := &models.TradingAccount{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Broker:      req.Broker,
		Credentials: req.Credentials,
		Balance:     req.Balance,
		RiskPercent: req.RiskPercent,
		AutoTrading: req.AutoTrading,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Active != nil {
		acc.Active = *req.Active
	}

	if err := h.accounts.SaveAccount(r.Context(), acc); err != nil {
		utils.WriteError(w, models.WrapErr(models.KindInternal, err, "creating account"))
		return
	}

	utils.WriteJSON(w, http.StatusCreated, acc)
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	acc, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, acc)
}

func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	acc, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, models.Errf(models.KindInvalidArgument, "invalid request body"))
		return
	}

	if req.Broker != "" {
		acc.Broker = req.Broker
	}
	if req.Credentials != (models.BrokerCredentials{}) {
		acc.Credentials = req.Credentials
	}
	if !req.Balance.IsZero() {
		acc.Balance = req.Balance
	}
	if !req.RiskPercent.IsZero() {
		acc.RiskPercent = req.RiskPercent
	}
	acc.AutoTrading = req.AutoTrading
	if req.Active != nil {
		acc.Active = *req.Active
	}
	acc.UpdatedAt = time.Now().UTC()

	if err := h.accounts.SaveAccount(r.Context(), acc); err != nil {
		utils.WriteError(w, models.WrapErr(models.KindInternal, err, "updating account"))
		return
	}

	utils.WriteJSON(w, http.StatusOK, acc)
}

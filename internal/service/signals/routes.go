package signals

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Alias1177/Trader/internal/router"
	"github.com/Alias1177/Trader/internal/signal"
	"github.com/Alias1177/Trader/internal/store"
	"github.com/Alias1177/Trader/internal/utils"
	"github.com/Alias1177/Trader/models"
)

// SignalHandler exposes signal generation and execution.
type SignalHandler struct {
	generator   *signal.Generator
	coordinator *router.Coordinator
	signals     store.SignalStore
}

func NewSignalHandler(generator *signal.Generator, coordinator *router.Coordinator, signals store.SignalStore) *SignalHandler {
	return &SignalHandler{
		generator:   generator,
		coordinator: coordinator,
		signals:     signals,
	}
}

func (h *SignalHandler) RegisterRoutes(r *mux.Router) {
	signalRouter := r.PathPrefix("/signals").Subrouter()

	signalRouter.HandleFunc("/generate", h.GenerateSignal).Methods("POST")
	signalRouter.HandleFunc("", h.GetSignals).Methods("GET")
	signalRouter.HandleFunc("/{id}", h.GetSignalByID).Methods("GET")
	signalRouter.HandleFunc("/{id}/execute", h.ExecuteSignal).Methods("POST")
}

type generateRequest struct {
	Symbol string `json:"symbol"`
}

// GenerateSignal runs the scoring pipeline for one symbol.
func (h *SignalHandler) GenerateSignal(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, models.Errf(models.KindInvalidArgument, "invalid request body"))
		return
	}

	sig, err := h.generator.Generate(r.Context(), req.Symbol)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, sig)
}

// GetSignals lists recent signals.
func (h *SignalHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 100
	if v := query.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if v := query.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	sigs, err := h.signals.ListSignals(r.Context(), limit, offset)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, sigs)
}

func (h *SignalHandler) GetSignalByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	sig, err := h.signals.GetSignal(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, sig)
}

type executeRequest struct {
	AccountIDs []string `json:"account_ids"`
}

// ExecuteSignal fans an existing signal out to the requested accounts.
// Used by the manual force-execute flow.
func (h *SignalHandler) ExecuteSignal(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, models.Errf(models.KindInvalidArgument, "invalid request body"))
		return
	}

	sig, err := h.signals.GetSignal(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	batch, err := h.coordinator.Execute(r.Context(), sig, req.AccountIDs)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"signal_id": sig.ID,
		"succeeded": batch.Succeeded(),
		"failed":    batch.Failed(),
		"outcomes":  batch.Outcomes,
	})
}

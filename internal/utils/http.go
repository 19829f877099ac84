package utils

import (
	"encoding/json"
	"net/http"

	"github.com/Alias1177/Trader/models"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the envelope for error responses.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// WriteError maps a trading error onto its HTTP status code.
func WriteError(w http.ResponseWriter, err error) {
	kind := models.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case models.KindInvalidArgument:
		status = http.StatusBadRequest
	case models.KindPreconditionFailed:
		status = http.StatusPreconditionFailed
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindBrokerFailure:
		status = http.StatusBadGateway
	}

	WriteJSON(w, status, errorBody{Error: err.Error(), Kind: kind.String()})
}

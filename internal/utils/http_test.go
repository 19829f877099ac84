package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Alias1177/Trader/models"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "invalid argument",
			err:        models.Errf(models.KindInvalidArgument, "non-positive volume"),
			wantStatus: http.StatusBadRequest,
			wantKind:   "INVALID_ARGUMENT",
		},
		{
			name:       "precondition failed",
			err:        models.Errf(models.KindPreconditionFailed, "account inactive"),
			wantStatus: http.StatusPreconditionFailed,
			wantKind:   "PRECONDITION_FAILED",
		},
		{
			name:       "not found",
			err:        models.Errf(models.KindNotFound, "order missing"),
			wantStatus: http.StatusNotFound,
			wantKind:   "NOT_FOUND",
		},
		{
			name:       "broker failure",
			err:        models.Errf(models.KindBrokerFailure, "bridge unreachable"),
			wantStatus: http.StatusBadGateway,
			wantKind:   "BROKER_FAILURE",
		},
		{
			name:       "unclassified defaults to internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantKind:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var body struct {
				Error string `json:"error"`
				Kind  string `json:"kind"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", body.Kind, tt.wantKind)
			}
			if body.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"id": "abc"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["id"] != "abc" {
		t.Errorf("body = %v", body)
	}
}

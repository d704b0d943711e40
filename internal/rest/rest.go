package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dailydollars/dailydollars/pkg/ledger"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrNotFound is wrapped by feature packages for missing resources.
var ErrNotFound = errors.New("not found")

// StatusFor maps engine and lookup errors to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrOutOfOrderClose), errors.Is(err, ledger.ErrDuplicateClose):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidPeriodLength), errors.Is(err, ledger.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as an ErrorResponse with the status StatusFor picks.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
		http.Error(w, err.Error(), status)
		return
	}
	WriteErrorResponse(w, status, http.StatusText(status), err.Error())
}

// WriteErrorResponse writes an ErrorResponse with an explicit status.
func WriteErrorResponse(w http.ResponseWriter, status int, message string, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   message,
		Details: details,
	})
	if encodeErr != nil {
		log.Errorf("failed to encode error response: %v", encodeErr)
	}
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

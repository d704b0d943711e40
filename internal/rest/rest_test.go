package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dailydollars/dailydollars/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: negative allowance", ledger.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: 2025-01-02", ledger.ErrDuplicateClose), http.StatusConflict},
		{fmt.Errorf("%w: gap", ledger.ErrOutOfOrderClose), http.StatusConflict},
		{fmt.Errorf("%w: remainder", ledger.ErrInvalidPeriodLength), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: no paychecks", ledger.ErrInsufficientData), http.StatusUnprocessableEntity},
		{fmt.Errorf("period x: %w", ErrNotFound), http.StatusNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestWriteError(t *testing.T) {
	// given
	rr := httptest.NewRecorder()

	// when
	WriteError(rr, fmt.Errorf("%w: 2025-01-02", ledger.ErrDuplicateClose))

	// then
	assert.Equal(t, http.StatusConflict, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "Conflict", body.Error)
	assert.Equal(t, "day already closed: 2025-01-02", body.Details)
}

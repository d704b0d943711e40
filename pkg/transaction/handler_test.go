package transaction

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dailydollars/dailydollars/internal/rest"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(handler *Handler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/transactions", handler.Ingest).Methods("POST")
	router.HandleFunc("/api/transactions", handler.List).Methods("GET")
	router.HandleFunc("/api/transactions/{transactionId}/tag", handler.Retag).Methods("PUT")
	router.HandleFunc("/api/transactions/{transactionId}/tag", handler.ClearOverride).Methods("DELETE")
	return router
}

func TestHandler_IngestAndList(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	router := newRouter(NewHandler(service))

	t.Run("should ingest a batch", func(t *testing.T) {
		// given
		body, err := json.Marshal([]TransactionDTO{
			{ExternalId: "a", Date: "2025-03-03", Merchant: "Cafe", AmountCents: -450},
			{ExternalId: "b", Date: "2025-03-04", Merchant: "Shop", AmountCents: -1200},
		})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBuffer(body)).WithContext(ctx)
		w := httptest.NewRecorder()

		// when
		router.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		var stored []TransactionDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&stored))
		require.Len(t, stored, 2)
		assert.Equal(t, "spend", stored[0].Tag)
	})

	t.Run("should list a date range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/transactions?from=2025-03-04&to=2025-03-04", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var listed []TransactionDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
		require.Len(t, listed, 1)
		assert.Equal(t, "b", listed[0].ExternalId)
	})

	t.Run("should reject malformed dates", func(t *testing.T) {
		body := `[{"externalId":"c","date":"03/05/2025","merchant":"Cafe","amountCents":-100}]`
		req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(body)).WithContext(ctx)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var errResponse rest.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errResponse))
		assert.Contains(t, errResponse.Details, "invalid date")
	})
}

func TestHandler_Retag(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	router := newRouter(NewHandler(service))
	stored, err := service.Ingest(ctx, []Transaction{{ExternalId: "a", Date: march(3), Merchant: "Cafe", AmountCents: -450}})
	require.NoError(t, err)

	t.Run("should override the tag", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/transactions/"+stored[0].Id+"/tag",
			bytes.NewBufferString(`{"tag":"ignored"}`)).WithContext(ctx)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var dto TransactionDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "ignored", dto.Tag)
		assert.Equal(t, "ignored", dto.TagOverride)
	})

	t.Run("should clear the override", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/transactions/"+stored[0].Id+"/tag", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var dto TransactionDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "spend", dto.Tag)
		assert.Empty(t, dto.TagOverride)
	})

	t.Run("should return 404 for unknown transaction", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/transactions/missing/tag",
			bytes.NewBufferString(`{"tag":"bill"}`)).WithContext(ctx)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

package rules

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(handler *Handler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/rules", handler.List).Methods("GET")
	router.HandleFunc("/api/rules", handler.Create).Methods("POST")
	router.HandleFunc("/api/rules/bills/total", handler.MonthlyBillsTotal).Methods("GET")
	router.HandleFunc("/api/rules/{ruleId}", handler.Update).Methods("PUT")
	router.HandleFunc("/api/rules/{ruleId}", handler.Delete).Methods("DELETE")
	return router
}

func TestHandler_Create(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	router := newRouter(NewHandler(service))

	t.Run("should create a bill rule", func(t *testing.T) {
		// given
		body, err := json.Marshal(RuleDTO{Kind: "bill", Pattern: "Gym", AmountCents: 1000, Frequency: "weekly"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/rules", bytes.NewBuffer(body)).WithContext(ctx)
		w := httptest.NewRecorder()

		// when
		router.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusCreated, w.Code)
		var created RuleDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.NotZero(t, created.Id)
		assert.Equal(t, int64(4330), created.MonthlyCents)
	})

	t.Run("should reject an empty pattern", func(t *testing.T) {
		body, err := json.Marshal(RuleDTO{Kind: "ignore", Pattern: " "})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/rules", bytes.NewBuffer(body)).WithContext(ctx)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should return the monthly bills total", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/rules/bills/total", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var total map[string]int64
		require.NoError(t, json.NewDecoder(w.Body).Decode(&total))
		assert.Equal(t, int64(4330), total["monthlyBillsCents"])
	})
}

func TestHandler_UpdateDelete(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	router := newRouter(NewHandler(service))

	t.Run("should return not found for an unknown rule", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/rules/42", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should reject a non numeric id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/rules/abc", bytes.NewBufferString("{}")).WithContext(ctx)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should update then delete a rule", func(t *testing.T) {
		// given
		created, err := service.Create(ctx, Rule{Kind: Ignore, Pattern: "transfer"})
		require.NoError(t, err)
		body, err := json.Marshal(RuleDTO{Kind: "ignore", Pattern: "venmo"})
		require.NoError(t, err)

		// when
		req := httptest.NewRequest(http.MethodPut, "/api/rules/"+strconv.Itoa(created.Id), bytes.NewBuffer(body)).WithContext(ctx)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		var updated RuleDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, "venmo", updated.Pattern)

		req = httptest.NewRequest(http.MethodDelete, "/api/rules/"+strconv.Itoa(created.Id), nil).WithContext(ctx)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

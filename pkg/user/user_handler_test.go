package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dailydollars/dailydollars/internal/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_CreateUser(t *testing.T) {
	t.Run("should create user from dto", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		handler := NewHandler(service)

		// given
		body, err := json.Marshal(UserDTO{
			Username:    "grace",
			DisplayName: "Grace",
			Settings:    SettingsDTO{Timezone: "UTC", PayCadence: "weekly", PayAnchor: "2025-01-06", PaycheckCents: 90000},
		})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/user", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		// when
		handler.CreateUser(w, req)

		// then
		assert.Equal(t, http.StatusCreated, w.Code)
		var created UserDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.Equal(t, "grace", created.Username)
		assert.Equal(t, "2025-01-06", created.Settings.PayAnchor)
		assert.Equal(t, "weekly", created.Settings.PayCadence)
	})

	t.Run("should reject malformed pay anchor", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		handler := NewHandler(service)

		body := `{"username":"henry","displayName":"Henry","settings":{"payAnchor":"06/01/2025"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/user", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.CreateUser(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var errResponse rest.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errResponse))
		assert.Equal(t, "Invalid pay anchor", errResponse.Error)
	})
}

func TestHandler_CurrentUser(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	handler := NewHandler(service)
	created, err := service.CreateUser(context.Background(), newUser("ivy"))
	require.NoError(t, err)

	t.Run("should return current user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/current", nil)
		w := httptest.NewRecorder()

		handler.CurrentUser(w, req.WithContext(WithUser(req.Context(), created)))

		assert.Equal(t, http.StatusOK, w.Code)
		var dto UserDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, created.Uid, dto.Uid)
		assert.Equal(t, "biweekly", dto.Settings.PayCadence)
	})

	t.Run("should return not found without user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/current", nil)
		w := httptest.NewRecorder()

		handler.CurrentUser(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

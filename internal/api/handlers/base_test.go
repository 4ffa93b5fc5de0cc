package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/finpal-backend/internal/api/dto"
	"github.com/eshaffer321/finpal-backend/internal/api/handlers"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/logging"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

func TestBase_HandleError(t *testing.T) {
	base := handlers.NewBase(logging.Discard())

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"validation", validator.New("amount", "is required"), http.StatusBadRequest, dto.ErrCodeValidation, "amount"},
		{"wrapped validation", fmt.Errorf("save: %w", validator.New("groupId", "unknown")), http.StatusBadRequest, dto.ErrCodeValidation, "groupId"},
		{"not found", storage.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound, ""},
		{"timeout", fmt.Errorf("bulk apply: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, dto.ErrCodeTimeout, ""},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternalError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/anything", nil)

			base.HandleError(rec, req, tt.err, "thing")

			assert.Equal(t, tt.wantStatus, rec.Code)
			var apiErr dto.APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantField, apiErr.Field)
			assert.NotContains(t, apiErr.Message, "disk on fire")
		})
	}
}

func TestBase_DecodeJSON(t *testing.T) {
	base := handlers.NewBase(logging.Discard())

	t.Run("valid body", func(t *testing.T) {
		var dst dto.SuggestRequest
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"transactionId":"t1","categoryId":"c1"}`))
		rec := httptest.NewRecorder()

		ok := base.DecodeJSON(rec, req, &dst)

		assert.True(t, ok)
		assert.Equal(t, "t1", dst.TransactionID)
	})

	t.Run("oversized body", func(t *testing.T) {
		var dst dto.SuggestRequest
		body := `{"transactionId":"` + strings.Repeat("x", 2<<20) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		rec := httptest.NewRecorder()

		ok := base.DecodeJSON(rec, req, &dst)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestParseIntParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25&offset=abc", nil)

	assert.Equal(t, 25, handlers.ParseIntParam(req, "limit", 50))
	assert.Equal(t, 0, handlers.ParseIntParam(req, "offset", 0))
	assert.Equal(t, 7, handlers.ParseIntParam(req, "missing", 7))
}

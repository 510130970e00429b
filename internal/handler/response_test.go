package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newContext(path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWriteErrorMapsKinds(t *testing.T) {
	tests := []struct {
		kind error
		want int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrPolicyViolation, http.StatusConflict},
		{service.ErrValidation, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.kind.Error(), func(t *testing.T) {
			c, rec := newContext("/")
			err := fmt.Errorf("wrapped: %w", &service.Error{Kind: tt.kind, Code: "some_code", Message: "nope"})

			require.NoError(t, writeError(c, zap.NewNop(), err))
			assert.Equal(t, tt.want, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "some_code", body.Error.Code)
			assert.Equal(t, "nope", body.Error.Message)
		})
	}
}

func TestWriteErrorHidesInternalFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	c, rec := newContext("/api/conversations")

	require.NoError(t, writeError(c, zap.New(core), errors.New("dial tcp: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), "internal_error")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "request failed", logs.All()[0].Message)
}

func TestParseID(t *testing.T) {
	for raw, ok := range map[string]bool{"12": true, "0": false, "-1": false, "abc": false, "": false} {
		c, _ := newContext("/")
		c.SetParamNames("id")
		c.SetParamValues(raw)
		id, got := parseID(c, "id")
		assert.Equal(t, ok, got, raw)
		if ok {
			assert.Equal(t, uint64(12), id)
		}
	}
}

func TestCurrentUser(t *testing.T) {
	c, _ := newContext("/")
	_, ok := currentUser(c)
	assert.False(t, ok)

	c.Set(UserContextKey, &model.User{ID: 3})
	u, ok := currentUser(c)
	require.True(t, ok)
	assert.Equal(t, uint64(3), u.ID)
}

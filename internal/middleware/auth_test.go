package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/ssrocks/rishop-backend/internal/handler"
	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/reqctx"
	"github.com/ssrocks/rishop-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (service.Identity, error) {
	if token != "valid" {
		return service.Identity{}, errors.New("invalid token")
	}
	return service.Identity{UID: "fb-1", Email: "ann@uni.edu", Name: "Ann"}, nil
}

type stubUsers struct {
	service.UserService
	seen []service.Identity
	err  error
}

func (s *stubUsers) EnsureUser(_ context.Context, identity service.Identity) (*model.User, error) {
	s.seen = append(s.seen, identity)
	if s.err != nil {
		return nil, s.err
	}
	return &model.User{ID: 9, UID: identity.UID, Username: identity.Name}, nil
}

func serve(m *AuthMiddleware, header, value string) (*httptest.ResponseRecorder, *model.User, uint64) {
	e := echo.New()
	var got *model.User
	var ctxUser uint64
	e.GET("/", func(c echo.Context) error {
		got, _ = c.Get(handler.UserContextKey).(*model.User)
		ctxUser = reqctx.UserID(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}, m.RequireAuth)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, got, ctxUser
}

func TestRequireAuthBearer(t *testing.T) {
	users := &stubUsers{}
	m := NewAuthMiddleware(stubVerifier{}, users, "", zap.NewNop())

	rec, u, ctxUser := serve(m, "Authorization", "Bearer valid")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, u)
	assert.Equal(t, "fb-1", u.UID)
	assert.Equal(t, uint64(9), ctxUser)
	require.Len(t, users.seen, 1)
	assert.Equal(t, "ann@uni.edu", users.seen[0].Email)
}

func TestRequireAuthRejects(t *testing.T) {
	m := NewAuthMiddleware(stubVerifier{}, &stubUsers{}, "", zap.NewNop())

	tests := []struct {
		name   string
		header string
		value  string
	}{
		{"no credentials", "", ""},
		{"bad token", "Authorization", "Bearer forged"},
		{"not bearer", "Authorization", "Basic dXNlcjpwdw=="},
		{"dev header disabled", "X-Debug-UID", "sam"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, u, _ := serve(m, tt.header, tt.value)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "unauthorized")
			assert.Nil(t, u)
		})
	}
}

func TestRequireAuthDevHeader(t *testing.T) {
	m := NewAuthMiddleware(nil, &stubUsers{}, "X-Debug-UID", zap.NewNop())

	rec, u, _ := serve(m, "X-Debug-UID", "sam")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, u)
	assert.Equal(t, "sam", u.UID)
	assert.Equal(t, "sam", u.Username)

	rec, _, _ = serve(m, "Authorization", "Bearer valid")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthProvisionFailure(t *testing.T) {
	m := NewAuthMiddleware(stubVerifier{}, &stubUsers{err: errors.New("db down")}, "", zap.NewNop())

	rec, u, _ := serve(m, "Authorization", "Bearer valid")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, u)
}

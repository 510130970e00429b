package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/ssrocks/rishop-backend/internal/handler"
	"github.com/ssrocks/rishop-backend/internal/logging"
	"github.com/ssrocks/rishop-backend/internal/reqctx"
	"github.com/ssrocks/rishop-backend/internal/service"
	"go.uber.org/zap"
)

// TokenVerifier turns a bearer token into a verified identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (service.Identity, error)
}

type firebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(ctx context.Context, projectID string) (TokenVerifier, error) {
	if projectID == "" {
		return nil, errors.New("middleware: firebase project id is empty")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) Verify(ctx context.Context, token string) (service.Identity, error) {
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return service.Identity{}, err
	}
	id := service.Identity{UID: tok.UID}
	id.Email, _ = tok.Claims["email"].(string)
	id.Name, _ = tok.Claims["name"].(string)
	return id, nil
}

type AuthMiddleware struct {
	verifier  TokenVerifier
	users     service.UserService
	devHeader string
	logger    *zap.Logger
}

// NewAuthMiddleware authenticates with verifier and, when devHeader is non-empty,
// also trusts that request header as a raw uid. verifier may be nil in development.
func NewAuthMiddleware(verifier TokenVerifier, users service.UserService, devHeader string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, users: users, devHeader: devHeader, logger: logger}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		identity, ok := m.identify(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized", "missing or invalid credentials"))
		}
		u, err := m.users.EnsureUser(ctx, identity)
		if err != nil {
			logging.FromContext(ctx, m.logger).Error("provision user failed", zap.String("uid", identity.UID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("internal_error", "failed to load user"))
		}
		c.Set("uid", u.UID)
		c.Set(handler.UserContextKey, u)
		c.SetRequest(c.Request().WithContext(reqctx.WithUserID(ctx, u.ID)))
		return next(c)
	}
}

func (m *AuthMiddleware) identify(c echo.Context) (service.Identity, bool) {
	if m.devHeader != "" {
		if uid := strings.TrimSpace(c.Request().Header.Get(m.devHeader)); uid != "" {
			return service.Identity{UID: uid, Name: uid}, true
		}
	}
	authz := c.Request().Header.Get("Authorization")
	if m.verifier == nil || !strings.HasPrefix(authz, "Bearer ") {
		return service.Identity{}, false
	}
	identity, err := m.verifier.Verify(c.Request().Context(), strings.TrimPrefix(authz, "Bearer "))
	if err != nil {
		logging.FromContext(c.Request().Context(), m.logger).Debug("token rejected", zap.Error(err))
		return service.Identity{}, false
	}
	return identity, true
}

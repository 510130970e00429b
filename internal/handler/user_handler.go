package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ssrocks/rishop-backend/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	svc    service.UserService
	logger *zap.Logger
}

func NewUserHandler(svc service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

type MeResponse struct {
	ID        uint64    `json:"id"`
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type PublicUserResponse struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"username"`
	MemberSince time.Time `json:"memberSince"`
}

func (h *UserHandler) Me(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, MeResponse{
		ID:        u.ID,
		UID:       u.UID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
}

func (h *UserHandler) GetPublic(c echo.Context) error {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		return badRequest(c, "invalid username")
	}
	u, err := h.svc.FindByUsername(c.Request().Context(), username)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, PublicUserResponse{
		ID:          u.ID,
		Username:    u.Username,
		MemberSince: u.CreatedAt,
	})
}

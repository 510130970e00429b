package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ssrocks/rishop-backend/internal/service"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	svc          service.NotificationService
	pollInterval int
	logger       *zap.Logger
}

func NewNotificationHandler(svc service.NotificationService, pollIntervalSeconds int, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, pollInterval: pollIntervalSeconds, logger: logger}
}

type NotificationResponse struct {
	UnreadConversations int64 `json:"unreadConversations"`
	PendingApprovals    int64 `json:"pendingApprovals"`
	TotalNotifications  int64 `json:"totalNotifications"`
	HasNotifications    bool  `json:"hasNotifications"`
	PollIntervalSeconds int   `json:"pollIntervalSeconds"`
}

func (h *NotificationHandler) Get(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	sum, err := h.svc.Summary(c.Request().Context(), u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, NotificationResponse{
		UnreadConversations: sum.UnreadConversations,
		PendingApprovals:    sum.PendingApprovals,
		TotalNotifications:  sum.Total,
		HasNotifications:    sum.HasAny,
		PollIntervalSeconds: h.pollInterval,
	})
}

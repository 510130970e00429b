package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/service"
	"go.uber.org/zap"
)

type MessageHandler struct {
	svc    service.MessageService
	logger *zap.Logger
}

func NewMessageHandler(svc service.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, logger: logger}
}

type MessageResponse struct {
	ID             uint64    `json:"id"`
	ConversationID uint64    `json:"conversationId"`
	SenderID       *uint64   `json:"senderId"`
	System         bool      `json:"system"`
	Content        string    `json:"content"`
	MessageType    string    `json:"messageType"`
	SentAt         time.Time `json:"sentAt"`
	IsRead         bool      `json:"isRead"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

func toMessageResponse(m *model.Message) MessageResponse {
	resp := MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Content:        m.Content,
		MessageType:    string(m.MessageType),
		SentAt:         m.SentAt,
		IsRead:         m.IsRead,
	}
	if id, ok := m.Sender().UserID(); ok {
		resp.SenderID = &id
	} else {
		resp.System = true
	}
	return resp
}

func toMessageResponses(msgs []model.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, toMessageResponse(&msgs[i]))
	}
	return out
}

func (h *MessageHandler) List(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid conversation id")
	}
	msgs, err := h.svc.List(c.Request().Context(), convID, u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toMessageResponses(msgs))
}

func (h *MessageHandler) Send(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid conversation id")
	}
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	msg, err := h.svc.Send(c.Request().Context(), convID, u.ID, req.Content)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, toMessageResponse(msg))
}

func (h *MessageHandler) MarkRead(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid conversation id")
	}
	n, err := h.svc.MarkRead(c.Request().Context(), convID, u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"marked": n})
}

func (h *MessageHandler) UnreadCount(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid conversation id")
	}
	n, err := h.svc.UnreadCount(c.Request().Context(), convID, u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"unreadCount": n})
}

func (h *MessageHandler) Last(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid conversation id")
	}
	msg, err := h.svc.Last(c.Request().Context(), convID, u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	if msg == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"message": nil})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": toMessageResponse(msg)})
}

func (h *MessageHandler) Search(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid conversation id")
	}
	msgs, err := h.svc.Search(c.Request().Context(), convID, u.ID, c.QueryParam("q"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toMessageResponses(msgs))
}

func (h *MessageHandler) ListByType(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	convID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid conversation id")
	}
	msgs, err := h.svc.ListByType(c.Request().Context(), convID, u.ID, c.Param("type"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toMessageResponses(msgs))
}

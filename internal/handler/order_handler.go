package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/service"
	"go.uber.org/zap"
)

type OrderHandler struct {
	svc    service.OrderService
	logger *zap.Logger
}

func NewOrderHandler(svc service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, logger: logger}
}

type OrderResponse struct {
	ID             uint64     `json:"id"`
	BuyerID        uint64     `json:"buyerId"`
	SellerID       uint64     `json:"sellerId"`
	ProductID      uint64     `json:"productId"`
	ConversationID uint64     `json:"conversationId"`
	TotalAmount    uint       `json:"totalAmount"`
	OrderDate      time.Time  `json:"orderDate"`
	CompletedAt    *time.Time `json:"completedAt"`
}

type OrderSummaryResponse struct {
	Count      int64  `json:"count"`
	TotalSpent uint64 `json:"totalSpent"`
}

func toOrderResponses(list []model.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, OrderResponse{
			ID:             o.ID,
			BuyerID:        o.BuyerID,
			SellerID:       o.SellerID,
			ProductID:      o.ProductID,
			ConversationID: o.ConversationID,
			TotalAmount:    o.TotalAmount,
			OrderDate:      o.OrderDate,
			CompletedAt:    o.CompletedAt,
		})
	}
	return out
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.svc.ListByBuyer(c.Request().Context(), u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toOrderResponses(list))
}

func (h *OrderHandler) ListSales(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.svc.ListBySeller(c.Request().Context(), u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, toOrderResponses(list))
}

func (h *OrderHandler) Summary(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	sum, err := h.svc.Summary(c.Request().Context(), u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, OrderSummaryResponse{Count: sum.Count, TotalSpent: sum.TotalSpent})
}

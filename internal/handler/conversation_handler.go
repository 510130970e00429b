package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/service"
	"go.uber.org/zap"
)

type ConversationHandler struct {
	convs    service.ConversationService
	messages service.MessageService
	users    service.UserService
	products service.ProductService
	logger   *zap.Logger
}

func NewConversationHandler(convs service.ConversationService, messages service.MessageService, users service.UserService, products service.ProductService, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{convs: convs, messages: messages, users: users, products: products, logger: logger}
}

type ConversationResponse struct {
	ID                 uint64    `json:"id"`
	ProductID          uint64    `json:"productId"`
	ProductName        string    `json:"productName,omitempty"`
	BuyerID            uint64    `json:"buyerId"`
	BuyerUsername      string    `json:"buyerUsername,omitempty"`
	SellerID           uint64    `json:"sellerId"`
	SellerUsername     string    `json:"sellerUsername,omitempty"`
	Status             string    `json:"status"`
	Role               string    `json:"role"`
	OtherParticipantID uint64    `json:"otherParticipantId"`
	CanApprove         bool      `json:"canApprove"`
	CanCancel          bool      `json:"canCancel"`
	UnreadCount        int64     `json:"unreadCount"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type ConversationListResponse struct {
	Conversations    []ConversationResponse `json:"conversations"`
	UnreadCount      int64                  `json:"unreadCount"`
	PendingApprovals []ConversationResponse `json:"pendingApprovals"`
}

type InitiateRequest struct {
	ProductID uint64 `json:"productId"`
}

func (h *ConversationHandler) Initiate(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req InitiateRequest
	if err := c.Bind(&req); err != nil || req.ProductID == 0 {
		return badRequest(c, "productId is required")
	}
	ctx := c.Request().Context()
	cv, created, err := h.convs.Initiate(ctx, req.ProductID, u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	views, err := h.decorate(ctx, u.ID, []model.Conversation{*cv})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, views[0])
}

func (h *ConversationHandler) List(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	ctx := c.Request().Context()
	convs, err := h.convs.ListForUser(ctx, u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	unread, err := h.convs.UnreadConversationCount(ctx, u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	pending, err := h.convs.ListRequiringApproval(ctx, u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	views, err := h.decorate(ctx, u.ID, append(convs, pending...))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, ConversationListResponse{
		Conversations:    views[:len(convs)],
		UnreadCount:      unread,
		PendingApprovals: views[len(convs):],
	})
}

func (h *ConversationHandler) Get(c echo.Context) error {
	return h.single(c, h.convs.Get)
}

func (h *ConversationHandler) Approve(c echo.Context) error {
	return h.single(c, h.convs.Approve)
}

func (h *ConversationHandler) Cancel(c echo.Context) error {
	return h.single(c, h.convs.Cancel)
}

func (h *ConversationHandler) single(c echo.Context, op func(ctx context.Context, id, userID uint64) (*model.Conversation, error)) error {
	u, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid conversation id")
	}
	ctx := c.Request().Context()
	cv, err := op(ctx, id, u.ID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	views, err := h.decorate(ctx, u.ID, []model.Conversation{*cv})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, views[0])
}

// decorate renders conversations from userID's point of view.
func (h *ConversationHandler) decorate(ctx context.Context, userID uint64, convs []model.Conversation) ([]ConversationResponse, error) {
	userIDs := make([]uint64, 0, len(convs)*2)
	productIDs := make([]uint64, 0, len(convs))
	convIDs := make([]uint64, 0, len(convs))
	for _, cv := range convs {
		userIDs = append(userIDs, cv.BuyerID, cv.SellerID)
		productIDs = append(productIDs, cv.ProductID)
		convIDs = append(convIDs, cv.ID)
	}
	names, err := h.users.Usernames(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	products, err := h.products.Names(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	unread, err := h.messages.UnreadCounts(ctx, userID, convIDs)
	if err != nil {
		return nil, err
	}

	out := make([]ConversationResponse, 0, len(convs))
	for i := range convs {
		cv := &convs[i]
		role, err := service.ResolveRole(cv, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, ConversationResponse{
			ID:                 cv.ID,
			ProductID:          cv.ProductID,
			ProductName:        products[cv.ProductID],
			BuyerID:            cv.BuyerID,
			BuyerUsername:      names[cv.BuyerID],
			SellerID:           cv.SellerID,
			SellerUsername:     names[cv.SellerID],
			Status:             string(cv.Status),
			Role:               string(role),
			OtherParticipantID: cv.OtherParticipant(userID),
			CanApprove:         service.CanApprove(cv.Status, role),
			CanCancel:          service.CanCancel(cv.Status),
			UnreadCount:        unread[cv.ID],
			CreatedAt:          cv.CreatedAt,
			UpdatedAt:          cv.UpdatedAt,
		})
	}
	return out, nil
}

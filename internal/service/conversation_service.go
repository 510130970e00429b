package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ConversationService interface {
	// Initiate returns the conversation for (buyer, seller, product), creating it
	// when none exists. created reports which of the two happened.
	Initiate(ctx context.Context, productID, buyerID uint64) (cv *model.Conversation, created bool, err error)
	Get(ctx context.Context, id, userID uint64) (*model.Conversation, error)
	ListForUser(ctx context.Context, userID uint64) ([]model.Conversation, error)
	Approve(ctx context.Context, id, userID uint64) (*model.Conversation, error)
	Cancel(ctx context.Context, id, userID uint64) (*model.Conversation, error)
	UnreadConversationCount(ctx context.Context, userID uint64) (int64, error)
	ListRequiringApproval(ctx context.Context, userID uint64) ([]model.Conversation, error)
}

type conversationService struct {
	repos *repository.Repositories
	tx    repository.Transactor
	deps  Deps
}

func NewConversationService(repos *repository.Repositories, tx repository.Transactor, deps Deps) ConversationService {
	return &conversationService{repos: repos, tx: tx, deps: deps}
}

func (s *conversationService) Initiate(ctx context.Context, productID, buyerID uint64) (*model.Conversation, bool, error) {
	product, err := s.repos.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, false, notFoundAs(err, errProductNotFound, "find product")
	}
	if product.SellerID == buyerID {
		return nil, false, errSelfPurchase
	}

	existing, err := s.repos.Conversations.FindByParticipants(ctx, buyerID, product.SellerID, product.ID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("service: find conversation: %w", err)
	}

	if !product.Purchasable() {
		return nil, false, errProductUnavailable
	}

	now := s.deps.now()
	cv := &model.Conversation{
		BuyerID:   buyerID,
		SellerID:  product.SellerID,
		ProductID: product.ID,
		Status:    model.ConversationStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		buyer, err := r.Users.FindByID(ctx, buyerID)
		if err != nil {
			return notFoundAs(err, errUserNotFound, "find buyer")
		}
		seller, err := r.Users.FindByID(ctx, product.SellerID)
		if err != nil {
			return notFoundAs(err, errUserNotFound, "find seller")
		}
		if err := r.Conversations.Create(ctx, cv); err != nil {
			return err
		}
		content := fmt.Sprintf("Conversation started for %s. Buyer: %s, Seller: %s. "+
			"Please discuss payment method, pickup location, and any other details.",
			product.Name, buyer.Username, seller.Username)
		return r.Messages.Create(ctx, model.NewSystemMessage(cv.ID, content, now))
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race against an identical initiation.
		existing, ferr := s.repos.Conversations.FindByParticipants(ctx, buyerID, product.SellerID, product.ID)
		if ferr != nil {
			return nil, false, fmt.Errorf("service: refetch conversation: %w", ferr)
		}
		return existing, false, nil
	}
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, false, err
		}
		s.deps.log(ctx).Error("initiate conversation failed", zap.Uint64("product_id", productID), zap.Error(err))
		return nil, false, fmt.Errorf("service: initiate conversation: %w", err)
	}

	s.deps.log(ctx).Info("conversation initiated",
		zap.Uint64("conversation_id", cv.ID),
		zap.Uint64("product_id", cv.ProductID),
		zap.Uint64("buyer_id", cv.BuyerID),
		zap.Uint64("seller_id", cv.SellerID))
	return cv, true, nil
}

func (s *conversationService) Get(ctx context.Context, id, userID uint64) (*model.Conversation, error) {
	return loadForParticipant(ctx, s.repos.Conversations, id, userID)
}

// loadForParticipant fetches a conversation and rejects callers outside it.
func loadForParticipant(ctx context.Context, convs repository.ConversationRepository, id, userID uint64) (*model.Conversation, error) {
	cv, err := convs.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, errConversationNotFound, "find conversation")
	}
	if _, err := ResolveRole(cv, userID); err != nil {
		return nil, err
	}
	return cv, nil
}

func (s *conversationService) ListForUser(ctx context.Context, userID uint64) ([]model.Conversation, error) {
	list, err := s.repos.Conversations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: list conversations: %w", err)
	}
	return list, nil
}

func (s *conversationService) Approve(ctx context.Context, id, userID uint64) (*model.Conversation, error) {
	var (
		out       *model.Conversation
		completed bool
	)
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		cv, role, err := lockForParticipant(ctx, r, id, userID)
		if err != nil {
			return err
		}
		next, err := nextApprovalStatus(cv.Status, role)
		if err != nil {
			return err
		}

		now := s.deps.now()
		if err := transition(ctx, r, cv, next, now); err != nil {
			return err
		}

		var content string
		if next == model.ConversationStatusCompleted {
			if err := s.complete(ctx, r, cv, now); err != nil {
				return err
			}
			completed = true
			content = "Transaction completed successfully! Both parties have approved. " +
				"The product has been marked as sold and added to buyer's order history."
		} else {
			actor, err := r.Users.FindByID(ctx, userID)
			if err != nil {
				return notFoundAs(err, errUserNotFound, "find approver")
			}
			content = fmt.Sprintf("%s (%s) has approved the transaction. Waiting for the other party to approve.",
				role.label(), actor.Username)
		}
		if err := r.Messages.Create(ctx, model.NewSystemMessage(cv.ID, content, now)); err != nil {
			return err
		}
		out = cv
		return nil
	})
	if err != nil {
		return nil, s.wrapTxError(ctx, "approve", id, err)
	}

	msg := "transaction approved"
	if completed {
		msg = "transaction completed"
	}
	s.deps.log(ctx).Info(msg,
		zap.Uint64("conversation_id", out.ID),
		zap.Uint64("user_id", userID),
		zap.String("status", string(out.Status)))
	return out, nil
}

// complete records the order and takes the product off the market. It runs
// inside the same transaction as the status change.
func (s *conversationService) complete(ctx context.Context, r *repository.Repositories, cv *model.Conversation, now time.Time) error {
	product, err := r.Products.FindByIDForUpdate(ctx, cv.ProductID)
	if err != nil {
		return notFoundAs(err, errProductNotFound, "lock product")
	}
	if !product.Purchasable() {
		return errProductUnavailable
	}
	completedAt := now
	order := &model.Order{
		BuyerID:        cv.BuyerID,
		SellerID:       cv.SellerID,
		ProductID:      cv.ProductID,
		ConversationID: cv.ID,
		TotalAmount:    product.Price,
		OrderDate:      now,
		CompletedAt:    &completedAt,
	}
	if err := r.Orders.Create(ctx, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	if err := r.Products.Deactivate(ctx, product.ID); err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	return nil
}

func (s *conversationService) Cancel(ctx context.Context, id, userID uint64) (*model.Conversation, error) {
	var out *model.Conversation
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		cv, role, err := lockForParticipant(ctx, r, id, userID)
		if err != nil {
			return err
		}
		switch cv.Status {
		case model.ConversationStatusCompleted:
			return errCancelCompleted
		case model.ConversationStatusCancelled:
			return errAlreadyCancelled
		}

		now := s.deps.now()
		if err := transition(ctx, r, cv, model.ConversationStatusCancelled, now); err != nil {
			return err
		}
		actor, err := r.Users.FindByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, errUserNotFound, "find canceller")
		}
		content := fmt.Sprintf("%s (%s) has cancelled this transaction.", role.label(), actor.Username)
		if err := r.Messages.Create(ctx, model.NewSystemMessage(cv.ID, content, now)); err != nil {
			return err
		}
		out = cv
		return nil
	})
	if err != nil {
		return nil, s.wrapTxError(ctx, "cancel", id, err)
	}

	s.deps.log(ctx).Info("transaction cancelled",
		zap.Uint64("conversation_id", out.ID),
		zap.Uint64("user_id", userID))
	return out, nil
}

// lockForParticipant loads the conversation under a row lock and resolves the caller's role.
func lockForParticipant(ctx context.Context, r *repository.Repositories, id, userID uint64) (*model.Conversation, Role, error) {
	cv, err := r.Conversations.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, "", notFoundAs(err, errConversationNotFound, "lock conversation")
	}
	role, err := ResolveRole(cv, userID)
	if err != nil {
		return nil, "", err
	}
	return cv, role, nil
}

// transition applies a status change guarded on the status read under lock.
func transition(ctx context.Context, r *repository.Repositories, cv *model.Conversation, next model.ConversationStatus, now time.Time) error {
	if !cv.Status.CanTransitionTo(next) {
		return policy("invalid_transition", fmt.Sprintf("Cannot move a %s conversation to %s", cv.Status, next))
	}
	n, err := r.Conversations.UpdateStatus(ctx, cv.ID, cv.Status, next, now)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n == 0 {
		return errConcurrentUpdate
	}
	cv.Status = next
	cv.UpdatedAt = now
	return nil
}

func (s *conversationService) wrapTxError(ctx context.Context, op string, id uint64, err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		s.deps.log(ctx).Info(op+" rejected",
			zap.Uint64("conversation_id", id),
			zap.String("code", svcErr.Code))
		return err
	}
	s.deps.log(ctx).Error(op+" failed", zap.Uint64("conversation_id", id), zap.Error(err))
	return fmt.Errorf("service: %s conversation %d: %w", op, id, err)
}

func (s *conversationService) UnreadConversationCount(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.repos.Conversations.CountWithUnreadForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("service: count unread conversations: %w", err)
	}
	return n, nil
}

func (s *conversationService) ListRequiringApproval(ctx context.Context, userID uint64) ([]model.Conversation, error) {
	list, err := s.repos.Conversations.ListAwaitingUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: list pending approvals: %w", err)
	}
	return list, nil
}

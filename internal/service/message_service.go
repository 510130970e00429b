package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MessageService interface {
	Send(ctx context.Context, convID, senderID uint64, content string) (*model.Message, error)
	// List returns the thread oldest-first and marks the caller's received messages read.
	List(ctx context.Context, convID, userID uint64) ([]model.Message, error)
	MarkRead(ctx context.Context, convID, userID uint64) (int64, error)
	UnreadCount(ctx context.Context, convID, userID uint64) (int64, error)
	// UnreadCounts reports per-conversation unread counts; ids userID does not take part in are omitted.
	UnreadCounts(ctx context.Context, userID uint64, convIDs []uint64) (map[uint64]int64, error)
	// Last returns nil without error for an empty thread.
	Last(ctx context.Context, convID, userID uint64) (*model.Message, error)
	Search(ctx context.Context, convID, userID uint64, term string) ([]model.Message, error)
	ListByType(ctx context.Context, convID, userID uint64, typ string) ([]model.Message, error)
}

type messageService struct {
	repos *repository.Repositories
	tx    repository.Transactor
	deps  Deps
}

func NewMessageService(repos *repository.Repositories, tx repository.Transactor, deps Deps) MessageService {
	return &messageService{repos: repos, tx: tx, deps: deps}
}

func (s *messageService) Send(ctx context.Context, convID, senderID uint64, content string) (*model.Message, error) {
	var msg *model.Message
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		cv, _, err := lockForParticipant(ctx, r, convID, senderID)
		if err != nil {
			return err
		}
		if cv.Status == model.ConversationStatusCancelled {
			return errSendCancelled
		}
		body, err := normalizeMessage(content)
		if err != nil {
			return err
		}
		msg = model.NewTextMessage(cv.ID, senderID, body, s.deps.now())
		if err := r.Messages.Create(ctx, msg); err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		return r.Conversations.Touch(ctx, cv.ID, msg.SentAt)
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, err
		}
		s.deps.log(ctx).Error("send message failed", zap.Uint64("conversation_id", convID), zap.Error(err))
		return nil, fmt.Errorf("service: send message: %w", err)
	}
	return msg, nil
}

func (s *messageService) List(ctx context.Context, convID, userID uint64) ([]model.Message, error) {
	var msgs []model.Message
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := loadForParticipant(ctx, r.Conversations, convID, userID); err != nil {
			return err
		}
		var err error
		if msgs, err = r.Messages.ListByConversation(ctx, convID); err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		n, err := r.Messages.MarkReadForUser(ctx, convID, userID)
		if err != nil {
			return fmt.Errorf("mark read: %w", err)
		}
		if n > 0 {
			s.deps.log(ctx).Debug("messages marked read",
				zap.Uint64("conversation_id", convID),
				zap.Uint64("user_id", userID),
				zap.Int64("count", n))
		}
		return nil
	})
	if err != nil {
		return nil, passOrWrap(err, "list messages")
	}
	return msgs, nil
}

func (s *messageService) MarkRead(ctx context.Context, convID, userID uint64) (int64, error) {
	if _, err := loadForParticipant(ctx, s.repos.Conversations, convID, userID); err != nil {
		return 0, err
	}
	n, err := s.repos.Messages.MarkReadForUser(ctx, convID, userID)
	if err != nil {
		return 0, fmt.Errorf("service: mark read: %w", err)
	}
	return n, nil
}

func (s *messageService) UnreadCount(ctx context.Context, convID, userID uint64) (int64, error) {
	if _, err := loadForParticipant(ctx, s.repos.Conversations, convID, userID); err != nil {
		return 0, err
	}
	n, err := s.repos.Messages.CountUnreadForUser(ctx, convID, userID)
	if err != nil {
		return 0, fmt.Errorf("service: count unread: %w", err)
	}
	return n, nil
}

func (s *messageService) UnreadCounts(ctx context.Context, userID uint64, convIDs []uint64) (map[uint64]int64, error) {
	counts, err := s.repos.Messages.CountUnreadByConversation(ctx, convIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("service: count unread by conversation: %w", err)
	}
	return counts, nil
}

func (s *messageService) Last(ctx context.Context, convID, userID uint64) (*model.Message, error) {
	if _, err := loadForParticipant(ctx, s.repos.Conversations, convID, userID); err != nil {
		return nil, err
	}
	msg, err := s.repos.Messages.Last(ctx, convID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service: last message: %w", err)
	}
	return msg, nil
}

func (s *messageService) Search(ctx context.Context, convID, userID uint64, term string) ([]model.Message, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errEmptySearchTerm
	}
	if _, err := loadForParticipant(ctx, s.repos.Conversations, convID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.repos.Messages.Search(ctx, convID, term)
	if err != nil {
		return nil, fmt.Errorf("service: search messages: %w", err)
	}
	return msgs, nil
}

func (s *messageService) ListByType(ctx context.Context, convID, userID uint64, typ string) ([]model.Message, error) {
	mt, ok := model.ParseMessageType(strings.ToUpper(strings.TrimSpace(typ)))
	if !ok {
		return nil, errUnknownMessageType
	}
	if _, err := loadForParticipant(ctx, s.repos.Conversations, convID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.repos.Messages.ListByType(ctx, convID, mt)
	if err != nil {
		return nil, fmt.Errorf("service: list messages by type: %w", err)
	}
	return msgs, nil
}

// passOrWrap returns rejections unchanged and wraps store failures.
func passOrWrap(err error, op string) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return fmt.Errorf("service: %s: %w", op, err)
}

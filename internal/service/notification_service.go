package service

import (
	"context"
)

// NotificationSummary is the badge state of a user's inbox.
type NotificationSummary struct {
	UnreadConversations int64
	PendingApprovals    int64
	Total               int64
	HasAny              bool
}

type NotificationService interface {
	Summary(ctx context.Context, userID uint64) (*NotificationSummary, error)
}

type notificationService struct {
	convs ConversationService
}

// NewNotificationService derives notifications from conversation state on every call.
func NewNotificationService(convs ConversationService) NotificationService {
	return &notificationService{convs: convs}
}

func (s *notificationService) Summary(ctx context.Context, userID uint64) (*NotificationSummary, error) {
	unread, err := s.convs.UnreadConversationCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending, err := s.convs.ListRequiringApproval(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := unread + int64(len(pending))
	return &NotificationSummary{
		UnreadConversations: unread,
		PendingApprovals:    int64(len(pending)),
		Total:               total,
		HasAny:              total > 0,
	}, nil
}

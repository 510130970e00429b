package repository

import (
	"context"
	"strings"

	"github.com/ssrocks/rishop-backend/internal/model"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ListByConversation(ctx context.Context, convID uint64) ([]model.Message, error)
	ListByType(ctx context.Context, convID uint64, typ model.MessageType) ([]model.Message, error)
	Last(ctx context.Context, convID uint64) (*model.Message, error)
	Search(ctx context.Context, convID uint64, term string) ([]model.Message, error)
	MarkReadForUser(ctx context.Context, convID, userID uint64) (int64, error)
	CountUnreadForUser(ctx context.Context, convID, userID uint64) (int64, error)
	CountUnreadByConversation(ctx context.Context, convIDs []uint64, userID uint64) (map[uint64]int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) ListByConversation(ctx context.Context, convID uint64) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("sent_at ASC").
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) ListByType(ctx context.Context, convID uint64, typ model.MessageType) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND message_type = ?", convID, typ).
		Order("sent_at ASC").
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) Last(ctx context.Context, convID uint64) (*model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msg model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("sent_at DESC").
		Order("id DESC").
		First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// Search matches term as a case-insensitive substring of the content, newest first.
// Folding happens in Go because SQLite's LOWER only folds ASCII.
func (r *messageRepository) Search(ctx context.Context, convID uint64, term string) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("sent_at DESC").
		Order("id DESC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	found := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if strings.Contains(strings.ToLower(m.Content), needle) {
			found = append(found, m)
		}
	}
	return found, nil
}

// MarkReadForUser flags every unread message userID received in the conversation.
// System messages have no sender and are left untouched.
func (r *messageRepository) MarkReadForUser(ctx context.Context, convID, userID uint64) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ? AND is_read = ? AND sender_id IS NOT NULL AND sender_id <> ?", convID, false, userID).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *messageRepository) CountUnreadForUser(ctx context.Context, convID, userID uint64) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ? AND is_read = ? AND sender_id IS NOT NULL AND sender_id <> ?", convID, false, userID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// CountUnreadByConversation counts userID's unread messages per conversation.
// Conversations userID does not participate in are left out of the result.
func (r *messageRepository) CountUnreadByConversation(ctx context.Context, convIDs []uint64, userID uint64) (map[uint64]int64, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	out := make(map[uint64]int64, len(convIDs))
	if len(convIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ConversationID uint64
		Unread         int64
	}
	if err := r.db.WithContext(ctx).
		Table("messages AS m").
		Select("m.conversation_id AS conversation_id, COUNT(*) AS unread").
		Joins("JOIN conversations AS c ON c.id = m.conversation_id").
		Where("m.conversation_id IN ? AND (c.buyer_id = ? OR c.seller_id = ?)", convIDs, userID, userID).
		Where("m.is_read = ? AND m.sender_id IS NOT NULL AND m.sender_id <> ?", false, userID).
		Group("m.conversation_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ConversationID] = row.Unread
	}
	return out, nil
}

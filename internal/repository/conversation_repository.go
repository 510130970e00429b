package repository

import (
	"context"
	"time"

	"github.com/ssrocks/rishop-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepository interface {
	Create(ctx context.Context, cv *model.Conversation) error
	FindByID(ctx context.Context, id uint64) (*model.Conversation, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (*model.Conversation, error)
	FindByParticipants(ctx context.Context, buyerID, sellerID, productID uint64) (*model.Conversation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Conversation, error)
	ListAwaitingUser(ctx context.Context, userID uint64) ([]model.Conversation, error)
	CountWithUnreadForUser(ctx context.Context, userID uint64) (int64, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.ConversationStatus, at time.Time) (int64, error)
	Touch(ctx context.Context, id uint64, at time.Time) error
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, cv *model.Conversation) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(cv).Error
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).First(&cv, id).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

// FindByIDForUpdate row-locks the conversation so concurrent status changes serialize on it.
func (r *conversationRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cv, id).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByParticipants(ctx context.Context, buyerID, sellerID, productID uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND seller_id = ? AND product_id = ?", buyerID, sellerID, productID).
		First(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID uint64) ([]model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Conversation
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListAwaitingUser returns conversations where the other side has approved and
// userID's approval would complete the transaction.
func (r *conversationRepository) ListAwaitingUser(ctx context.Context, userID uint64) ([]model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Conversation
	if err := r.db.WithContext(ctx).
		Where("(status = ? AND buyer_id = ?) OR (status = ? AND seller_id = ?)",
			model.ConversationStatusSellerApproved, userID,
			model.ConversationStatusBuyerApproved, userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// CountWithUnreadForUser counts distinct conversations holding at least one
// unread message sent by the other participant.
func (r *conversationRepository) CountWithUnreadForUser(ctx context.Context, userID uint64) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var n int64
	if err := r.db.WithContext(ctx).
		Table("messages AS m").
		Joins("JOIN conversations AS c ON c.id = m.conversation_id").
		Where("(c.buyer_id = ? OR c.seller_id = ?)", userID, userID).
		Where("m.is_read = ? AND m.sender_id IS NOT NULL AND m.sender_id <> ?", false, userID).
		Distinct("m.conversation_id").
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateStatus moves the conversation from one status to another and reports the
// affected rows; 0 means the status was no longer from.
func (r *conversationRepository) UpdateStatus(ctx context.Context, id uint64, from, to model.ConversationStatus, at time.Time) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": at,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *conversationRepository) Touch(ctx context.Context, id uint64, at time.Time) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", at).Error
}

package model

import "time"

type Conversation struct {
	ID        uint64             `gorm:"primaryKey;autoIncrement"`
	BuyerID   uint64             `gorm:"column:buyer_id;not null;uniqueIndex:uk_conversations_buyer_seller_product,priority:1;index"`
	SellerID  uint64             `gorm:"column:seller_id;not null;uniqueIndex:uk_conversations_buyer_seller_product,priority:2;index"`
	ProductID uint64             `gorm:"column:product_id;not null;uniqueIndex:uk_conversations_buyer_seller_product,priority:3;index"`
	Status    ConversationStatus `gorm:"column:status;size:32;not null;index"`
	CreatedAt time.Time          `gorm:"column:created_at;not null"`
	// UpdatedAt is the last-activity marker; it is set explicitly by the engine.
	UpdatedAt time.Time `gorm:"column:updated_at;not null;index;autoUpdateTime:false"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// OtherParticipant returns the counterpart of userID, or 0 when userID is not a participant.
func (c *Conversation) OtherParticipant(userID uint64) uint64 {
	switch userID {
	case c.BuyerID:
		return c.SellerID
	case c.SellerID:
		return c.BuyerID
	}
	return 0
}

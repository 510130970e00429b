package model

import "time"

// Order is the completion record of a conversation whose buyer and seller both approved.
type Order struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement"`
	BuyerID        uint64     `gorm:"column:buyer_id;not null;index"`
	SellerID       uint64     `gorm:"column:seller_id;not null;index"`
	ProductID      uint64     `gorm:"column:product_id;not null;index"`
	ConversationID uint64     `gorm:"column:conversation_id;not null;uniqueIndex:uk_orders_conversation"`
	TotalAmount    uint       `gorm:"column:total_amount;not null"`
	OrderDate      time.Time  `gorm:"column:order_date;not null"`
	CompletedAt    *time.Time `gorm:"column:completed_at"`
}

func (Order) TableName() string {
	return "orders"
}

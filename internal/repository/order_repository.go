package repository

import (
	"context"

	"github.com/ssrocks/rishop-backend/internal/model"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByConversation(ctx context.Context, convID uint64) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]model.Order, error)
	SummaryByBuyer(ctx context.Context, buyerID uint64) (count int64, total uint64, err error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) FindByConversation(ctx context.Context, convID uint64) (*model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var o model.Order
	if err := r.db.WithContext(ctx).Where("conversation_id = ?", convID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("order_date DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("order_date DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) SummaryByBuyer(ctx context.Context, buyerID uint64) (int64, uint64, error) {
	if r.db == nil {
		return 0, 0, ErrDBNotReady
	}
	var row struct {
		Cnt   int64
		Total uint64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("COUNT(*) AS cnt, COALESCE(SUM(total_amount), 0) AS total").
		Where("buyer_id = ?", buyerID).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Cnt, row.Total, nil
}

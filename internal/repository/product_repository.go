package repository

import (
	"context"

	"github.com/ssrocks/rishop-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uint64) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]model.Product, error)
	ListAvailable(ctx context.Context, limit, offset int) ([]model.Product, int64, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]model.Product, error)
	Deactivate(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uint64) (*model.Product, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDForUpdate row-locks the product for the rest of the enclosing transaction.
func (r *productRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*model.Product, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.Product, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var list []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepository) ListAvailable(ctx context.Context, limit, offset int) ([]model.Product, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		list  []model.Product
		total int64
	)
	if err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("product_available = ? AND stock_quantity > 0", true).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.WithContext(ctx).
		Where("product_available = ? AND stock_quantity > 0", true).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepository) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Product, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Product
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Deactivate marks the product sold: unavailable with no stock left.
func (r *productRepository) Deactivate(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"product_available": false,
			"stock_quantity":    0,
		}).Error
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

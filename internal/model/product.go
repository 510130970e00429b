package model

import "time"

type Product struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement"`
	Name             string    `gorm:"size:120;not null"`
	Description      string    `gorm:"type:text;not null"`
	Brand            string    `gorm:"size:120"`
	Category         string    `gorm:"size:64;index"`
	Price            uint      `gorm:"not null"`
	StockQuantity    int       `gorm:"column:stock_quantity;not null"`
	ProductAvailable bool      `gorm:"column:product_available;not null"`
	ImageURL         *string   `gorm:"size:512"`
	SellerID         uint64    `gorm:"column:seller_id;not null;index"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

// Purchasable reports whether a new conversation may be opened on the product.
func (p *Product) Purchasable() bool {
	return p.ProductAvailable && p.StockQuantity > 0
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item. A product belongs to exactly one store; stock
// per room lives in InventoryItem, not here.
type Product struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_products_store_sku"`
	SKU     string    `gorm:"not null;uniqueIndex:idx_products_store_sku"`
	Name    string    `gorm:"index;not null"`
	// Price is the unit sale price; the cost basis is tracked per room on
	// InventoryItem.AverageCost.
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Store *Store `gorm:"foreignKey:StoreID"`
}

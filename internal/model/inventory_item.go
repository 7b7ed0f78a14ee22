package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is the quantity-bearing join of Product × Room: the current
// stock level and weighted-average unit cost of one product in one room.
// Unique per (product, room). Rows are never deleted — emptying a room
// writes quantity 0, preserving the cost basis for the next restock.
type InventoryItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_room"`
	RoomID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_room"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	// Quantity is never persisted negative (also enforced by a DB CHECK).
	Quantity    int             `gorm:"not null;default:0"`
	AverageCost decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Room    *Room    `gorm:"foreignKey:RoomID"`
}

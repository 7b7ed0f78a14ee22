package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger entry types.
const (
	LedgerRestock    = "RESTOCK"
	LedgerSale       = "SALE"
	LedgerTransfer   = "TRANSFER"
	LedgerAdjustment = "ADJUSTMENT"
)

// InventoryTransaction is one immutable row of the stock ledger. Every
// stock-affecting mutation appends here in the same transaction that updates
// the InventoryItem projection. Rows are NEVER updated or deleted —
// corrections append new rows.
type InventoryTransaction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type            string    `gorm:"type:varchar(12);not null;index"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index"`
	RoomID          uuid.UUID `gorm:"type:uuid;not null;index"`
	StoreID         uuid.UUID `gorm:"type:uuid;not null;index"`
	InventoryItemID uuid.UUID `gorm:"type:uuid;not null"`
	// Quantity is signed: positive = stock into the room, negative = out.
	Quantity int `gorm:"not null"`
	// UnitCost is the per-unit cost basis at the time of the event.
	UnitCost    decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	SupplierRef *uuid.UUID      `gorm:"type:uuid"`
	// InvoiceRef holds the supplier invoice number on restocks, or the sale
	// invoice number on sale deductions.
	InvoiceRef *string
	// TransferRef is shared by the two rows of one transfer.
	TransferRef *uuid.UUID `gorm:"type:uuid;index"`
	Note        string
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Room    *Room    `gorm:"foreignKey:RoomID"`
}

// TableName overrides GORM's default pluralization.
func (InventoryTransaction) TableName() string { return "inventory_ledger" }

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout.
const (
	PaymentCash     = "cash"
	PaymentDebit    = "debit"
	PaymentCredit   = "credit"
	PaymentTransfer = "transfer"
)

// SaleCompleted is the only sale status: sales are created in their final
// state and never edited or voided.
const SaleCompleted = "completed"

// Sale is a completed checkout. Created atomically with its items and the
// inventory deductions it caused; never mutated afterwards.
type Sale struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sales_store_invoice"`
	UserID        uuid.UUID `gorm:"type:uuid;not null"`
	InvoiceNumber string    `gorm:"not null;uniqueIndex:idx_sales_store_invoice"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	// CashReceived / Change are set for cash payments only.
	CashReceived *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Change       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status       string           `gorm:"type:varchar(20);not null;default:'completed'"`
	TaxID        string           `gorm:"type:varchar(32)"`
	CreatedAt    time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
	User  *User      `gorm:"foreignKey:UserID"`
}

// SaleItem is one line of a sale, created with its parent and never
// independently mutated.
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

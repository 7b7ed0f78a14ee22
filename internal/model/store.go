package model

import (
	"time"

	"github.com/google/uuid"
)

// Store is the tenant boundary: it owns rooms, products and sales.
// InvoiceCounter is mutated exclusively through
// StoreRepository.NextInvoiceNumberTx (a single atomic UPDATE ... RETURNING),
// never by read-modify-write.
type Store struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string    `gorm:"not null"`
	OwnerID        uuid.UUID `gorm:"type:uuid;not null;index"`
	InvoiceCounter int       `gorm:"not null;default:0"`
	// TaxID is stamped onto every sale issued by this store.
	TaxID     string `gorm:"type:varchar(32)"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Owner *User `gorm:"foreignKey:OwnerID"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Room is a physical or logical stock location inside a store (storage,
// sales floor, cold room, ...). Only rooms with ForSale=true are eligible
// to satisfy customer sales.
type Room struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	ForSale   bool      `gorm:"not null;default:false"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Store *Store `gorm:"foreignKey:StoreID"`
}

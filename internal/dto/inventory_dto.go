package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RestockRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	RoomID    string `json:"room_id"    validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	// Cost is the incoming unit cost. Omitting it treats the units as free,
	// which dilutes the average cost — real restocks should always set it.
	Cost          *decimal.Decimal `json:"cost"           validate:"omitempty,min=0"`
	SupplierID    *string          `json:"supplier_id"    validate:"omitempty,uuid"`
	InvoiceNumber *string          `json:"invoice_number"`
}

type TransferRequest struct {
	ProductID         string `json:"product_id"          validate:"required,uuid"`
	SourceRoomID      string `json:"source_room_id"      validate:"required,uuid"`
	DestinationRoomID string `json:"destination_room_id" validate:"required,uuid"`
	Quantity          int    `json:"quantity"            validate:"required,min=1"`
}

type AdjustRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	RoomID    string `json:"room_id"    validate:"required,uuid"`
	// Delta is signed: positive adds stock, negative removes it.
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=5"`
}

// InventoryFilter is bound from the query string of GET /v1/inventory.
type InventoryFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	RoomID    string `form:"room_id"    validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// LedgerFilter is bound from the query string of GET /v1/inventory/ledger.
type LedgerFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	RoomID    string `form:"room_id"    validate:"omitempty,uuid"`
	Type      string `form:"type"       validate:"omitempty,oneof=RESTOCK SALE TRANSFER ADJUSTMENT"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InventoryItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Product     string          `json:"product,omitempty"`
	RoomID      string          `json:"room_id"`
	Room        string          `json:"room,omitempty"`
	Quantity    int             `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

// RestockResponse returns the updated inventory snapshot for the room.
type RestockResponse struct {
	Success bool                  `json:"success"`
	Item    InventoryItemResponse `json:"item"`
}

type InventoryListResponse struct {
	Data  []InventoryItemResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type LedgerEntryResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	ProductID     string          `json:"product_id"`
	Product       string          `json:"product,omitempty"`
	RoomID        string          `json:"room_id"`
	Room          string          `json:"room,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	SupplierRef   *string         `json:"supplier_ref,omitempty"`
	InvoiceRef    *string         `json:"invoice_ref,omitempty"`
	TransferRef   *string         `json:"transfer_ref,omitempty"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type LedgerListResponse struct {
	Data  []LedgerEntryResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	// Price is the unit price the register charged. Zero falls back to the
	// product's current list price.
	Price decimal.Decimal `json:"price" validate:"min=0"`
}

type CreateSaleRequest struct {
	Items []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	// Total is the register's computed total; the server recomputes and
	// rejects the sale when they disagree.
	Total         decimal.Decimal `json:"total"          validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash debit credit transfer"`
	// CashReceived / Change apply to cash payments only.
	CashReceived *decimal.Decimal `json:"cash_received" validate:"omitempty,min=0"`
	Change       *decimal.Decimal `json:"change"        validate:"omitempty,min=0"`
	// CustomerEmail: optional — when present, the receipt worker mails the PDF.
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
}

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Date  string `form:"date"`  // YYYY-MM-DD; empty = today
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SalePayload struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	CashReceived  *decimal.Decimal   `json:"cash_received,omitempty"`
	Change        *decimal.Decimal   `json:"change,omitempty"`
	Status        string             `json:"status"`
	TaxID         string             `json:"tax_id"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     string             `json:"created_at"`
}

// SaleResponse is the success envelope for POST /v1/sales. The client must
// not assume the sale succeeded unless it receives this envelope with the
// invoice number set.
type SaleResponse struct {
	Success bool        `json:"success"`
	Sale    SalePayload `json:"sale"`
}

type SaleListResponse struct {
	Data  []SalePayload `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

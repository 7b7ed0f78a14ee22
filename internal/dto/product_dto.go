package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	SKU   string          `json:"sku"   validate:"required"`
	Name  string          `json:"name"  validate:"required"`
	Price decimal.Decimal `json:"price" validate:"required,gt=0"`
}

type UpdateProductRequest struct {
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
}

// ProductFilter is bound from the query string of GET /v1/products.
type ProductFilter struct {
	SKU    string `form:"sku"`
	Name   string `form:"name"`
	Active string `form:"active"` // "false" = inactive, "all" = everything, default active
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProductResponse struct {
	ID        string          `json:"id"`
	StoreID   string          `json:"store_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Active    bool            `json:"active"`
	CreatedAt string          `json:"created_at"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

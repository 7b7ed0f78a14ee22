package repository

import (
	"context"

	"stockpos/internal/dto"
	"stockpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository is the data access contract for the materialized
// per-(product, room) stock projection. All mutating methods take a live tx:
// InventoryItem rows only ever change inside the transaction that also
// appends the matching ledger rows.
type InventoryRepository interface {
	FindItem(ctx context.Context, productID, roomID uuid.UUID) (*model.InventoryItem, error)
	// FindItemForUpdateTx row-locks one item so concurrent restocks/transfers
	// against the same (product, room) serialize.
	FindItemForUpdateTx(ctx context.Context, tx *gorm.DB, productID, roomID uuid.UUID) (*model.InventoryItem, error)
	// SellableForUpdateTx returns the items for (store, product) whose room
	// has for_sale = true, locked FOR UPDATE and sorted quantity-descending —
	// exactly the walk order of the allocator.
	SellableForUpdateTx(ctx context.Context, tx *gorm.DB, storeID, productID uuid.UUID) ([]model.InventoryItem, error)
	CreateTx(ctx context.Context, tx *gorm.DB, item *model.InventoryItem) error
	// SetLevelsTx writes the recomputed (quantity, averageCost) pair.
	SetLevelsTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int, averageCost decimal.Decimal) error
	// AddQuantityTx applies a relative quantity delta without touching cost.
	AddQuantityTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error
	List(ctx context.Context, storeID uuid.UUID, filter dto.InventoryFilter) ([]model.InventoryItem, int64, error)
	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) FindItem(ctx context.Context, productID, roomID uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND room_id = ?", productID, roomID).
		First(&item).Error
	return &item, err
}

func (r *inventoryRepo) FindItemForUpdateTx(ctx context.Context, tx *gorm.DB, productID, roomID uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND room_id = ?", productID, roomID).
		First(&item).Error
	return &item, err
}

func (r *inventoryRepo) SellableForUpdateTx(ctx context.Context, tx *gorm.DB, storeID, productID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := tx.WithContext(ctx).
		Joins("JOIN rooms ON rooms.id = inventory_items.room_id").
		Where("inventory_items.store_id = ? AND inventory_items.product_id = ? AND rooms.for_sale = true AND rooms.active = true",
			storeID, productID).
		Order("inventory_items.quantity DESC").
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "inventory_items"}}).
		Find(&items).Error
	return items, err
}

func (r *inventoryRepo) CreateTx(ctx context.Context, tx *gorm.DB, item *model.InventoryItem) error {
	return tx.WithContext(ctx).Create(item).Error
}

func (r *inventoryRepo) SetLevelsTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int, averageCost decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&model.InventoryItem{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":     quantity,
			"average_cost": averageCost,
		}).Error
}

func (r *inventoryRepo) AddQuantityTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.WithContext(ctx).Model(&model.InventoryItem{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *inventoryRepo) List(ctx context.Context, storeID uuid.UUID, filter dto.InventoryFilter) ([]model.InventoryItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("store_id = ?", storeID).
		Preload("Product").Preload("Room")

	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.RoomID != "" {
		q = q.Where("room_id = ?", filter.RoomID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var items []model.InventoryItem
	err := q.Order("updated_at DESC").Offset(offset).Limit(filter.Limit).Find(&items).Error
	return items, total, err
}

package repository

import (
	"context"

	"stockpos/internal/dto"
	"stockpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerRepository appends to and reads the immutable inventory ledger.
// There is deliberately no Update or Delete: corrections append new rows.
type LedgerRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, entry *model.InventoryTransaction) error
	List(ctx context.Context, storeID uuid.UUID, filter dto.LedgerFilter) ([]model.InventoryTransaction, int64, error)
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) CreateTx(ctx context.Context, tx *gorm.DB, entry *model.InventoryTransaction) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *ledgerRepo) List(ctx context.Context, storeID uuid.UUID, filter dto.LedgerFilter) ([]model.InventoryTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryTransaction{}).
		Where("store_id = ?", storeID).
		Preload("Product").Preload("Room")

	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.RoomID != "" {
		q = q.Where("room_id = ?", filter.RoomID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var entries []model.InventoryTransaction
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&entries).Error
	return entries, total, err
}

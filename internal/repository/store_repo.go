package repository

import (
	"context"

	"stockpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(ctx context.Context, s *model.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Store, error)
	// IsOwnedBy reports whether storeID belongs to userID — the cross-store
	// half of the product access policy.
	IsOwnedBy(ctx context.Context, storeID, userID uuid.UUID) (bool, error)
	// NextInvoiceNumberTx atomically increments the store's invoice counter
	// and returns the new value. Must run inside the sale transaction so the
	// number is rolled back with everything else on failure.
	NextInvoiceNumberTx(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (int, error)
	DB() *gorm.DB
}

type storeRepo struct{ db *gorm.DB }

func NewStoreRepository(db *gorm.DB) StoreRepository { return &storeRepo{db: db} }

func (r *storeRepo) DB() *gorm.DB { return r.db }

func (r *storeRepo) Create(ctx context.Context, s *model.Store) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *storeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *storeRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).Where("owner_id = ? AND active = true", ownerID).Find(&stores).Error
	return stores, err
}

func (r *storeRepo) IsOwnedBy(ctx context.Context, storeID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("id = ? AND owner_id = ? AND active = true", storeID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *storeRepo) NextInvoiceNumberTx(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (int, error) {
	// Single atomic UPDATE ... RETURNING — never read-then-write. Two
	// concurrent sales for the same store serialize on the row lock and can
	// never observe the same counter value.
	var num int
	err := tx.WithContext(ctx).
		Raw("UPDATE stores SET invoice_counter = invoice_counter + 1 WHERE id = ? RETURNING invoice_counter", storeID).
		Scan(&num).Error
	return num, err
}

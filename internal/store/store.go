package store

import (
	"context"

	"gorm.io/gorm"

	"school-resource-backend/internal/model"
)

// Store defines the database operations with behavior beyond single-row
// CRUD: the loan ledger's paired counter mutation, filtered predicates, and
// the admin aggregates. Plain per-entity CRUD goes through DB() directly.
type Store interface {
	DB() *gorm.DB

	CreateBorrow(ctx context.Context, in BorrowInput) (*model.BorrowRecord, error)
	ReturnBorrow(ctx context.Context, id uint) (*model.BorrowRecord, error)
	ListActiveBorrows(ctx context.Context) ([]model.BorrowRecord, error)

	LowStockItems(ctx context.Context) ([]model.InventoryItem, error)

	Stats(ctx context.Context) (*AdminStats, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

// LowStockItems returns every inventory item at or below its reorder
// threshold. The boundary is inclusive: quantity == threshold is low stock.
func (s *gormStore) LowStockItems(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := s.db.WithContext(ctx).
		Where("quantity <= threshold").
		Find(&items).Error
	return items, err
}

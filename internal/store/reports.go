package store

import (
	"context"

	"gorm.io/gorm"

	"school-resource-backend/internal/model"
)

// AdminStats is the read-only dashboard aggregate. All figures are snapshot
// reads; no cross-table transaction is taken.
type AdminStats struct {
	Users     UserStats      `json:"users"`
	Resources ResourceStats  `json:"resources"`
	Labs      LabStats       `json:"labs"`
	Inventory InventoryStats `json:"inventory"`
	Library   LibraryStats   `json:"library"`
}

type UserStats struct {
	Total  int64            `json:"total"`
	ByRole map[string]int64 `json:"by_role"`
}

type ResourceStats struct {
	TotalRequests int64            `json:"total_requests"`
	ByStatus      map[string]int64 `json:"by_status"`
}

type LabStats struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

type InventoryStats struct {
	TotalItems    int64 `json:"total_items"`
	LowStock      int64 `json:"low_stock"`
	TotalQuantity int64 `json:"total_quantity"`
}

type LibraryStats struct {
	TotalBooks      int64 `json:"total_books"`
	TotalCopies     int64 `json:"total_copies"`
	AvailableCopies int64 `json:"available_copies"`
}

func groupCounts(db *gorm.DB, entity any, column string) (map[string]int64, error) {
	type row struct {
		Label string
		Count int64
	}
	var rows []row
	if err := db.Model(entity).
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Label] = r.Count
	}
	return out, nil
}

func sumColumn(db *gorm.DB, entity any, column string) (int64, error) {
	var total int64
	err := db.Model(entity).
		Select("COALESCE(SUM(" + column + "), 0)").
		Scan(&total).Error
	return total, err
}

// Stats computes the admin dashboard figures.
func (s *gormStore) Stats(ctx context.Context) (*AdminStats, error) {
	db := s.db.WithContext(ctx)
	stats := &AdminStats{}
	var err error

	if err = db.Model(&model.User{}).Count(&stats.Users.Total).Error; err != nil {
		return nil, err
	}
	if stats.Users.ByRole, err = groupCounts(db, &model.User{}, "role"); err != nil {
		return nil, err
	}

	if err = db.Model(&model.ResourceRequest{}).Count(&stats.Resources.TotalRequests).Error; err != nil {
		return nil, err
	}
	if stats.Resources.ByStatus, err = groupCounts(db, &model.ResourceRequest{}, "status"); err != nil {
		return nil, err
	}

	if err = db.Model(&model.LabBooking{}).Count(&stats.Labs.TotalBookings).Error; err != nil {
		return nil, err
	}
	if stats.Labs.ByStatus, err = groupCounts(db, &model.LabBooking{}, "status"); err != nil {
		return nil, err
	}

	if err = db.Model(&model.InventoryItem{}).Count(&stats.Inventory.TotalItems).Error; err != nil {
		return nil, err
	}
	if err = db.Model(&model.InventoryItem{}).
		Where("quantity <= threshold").
		Count(&stats.Inventory.LowStock).Error; err != nil {
		return nil, err
	}
	if stats.Inventory.TotalQuantity, err = sumColumn(db, &model.InventoryItem{}, "quantity"); err != nil {
		return nil, err
	}

	if err = db.Model(&model.Book{}).Count(&stats.Library.TotalBooks).Error; err != nil {
		return nil, err
	}
	if stats.Library.TotalCopies, err = sumColumn(db, &model.Book{}, "total_copies"); err != nil {
		return nil, err
	}
	if stats.Library.AvailableCopies, err = sumColumn(db, &model.Book{}, "available_copies"); err != nil {
		return nil, err
	}

	return stats, nil
}

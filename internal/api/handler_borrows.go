package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-resource-backend/internal/model"
	"school-resource-backend/internal/store"
)

type borrowInput struct {
	BookID       uint   `json:"book" binding:"required"`
	BorrowerName string `json:"borrower_name" binding:"required"`
	BorrowerType string `json:"borrower_type" binding:"omitempty,oneof=student teacher"`
	DueDate      string `json:"due_date" binding:"required,datetime=2006-01-02"`
}

// CreateBorrow checks out one copy of a book. The copy decrement and the
// record insert happen in a single transaction so the count can never go
// negative under concurrent checkouts.
func (h *Handler) CreateBorrow(c *gin.Context) {
	var in borrowInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	borrowerType := model.BorrowerType(in.BorrowerType)
	if borrowerType == "" {
		borrowerType = model.BorrowerStudent
	}
	rec, err := h.store.CreateBorrow(c.Request.Context(), store.BorrowInput{
		BookID:       in.BookID,
		BorrowerName: in.BorrowerName,
		BorrowerType: borrowerType,
		DueDate:      in.DueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoCopiesAvailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No available copies of this book"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create borrow record"})
		}
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListBorrows(c *gin.Context) {
	db := h.store.DB().WithContext(c.Request.Context())
	if name := c.Query("borrower_name"); name != "" {
		db = db.Where("borrower_name = ?", name)
	}
	if returned := c.Query("returned"); returned != "" {
		db = db.Where("returned = ?", returned == "true")
	}
	var recs []model.BorrowRecord
	if err := db.Preload("Book").Order("id ASC").Find(&recs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list borrow records"})
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) ActiveBorrows(c *gin.Context) {
	recs, err := h.store.ListActiveBorrows(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list borrow records"})
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) GetBorrow(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	db := h.store.DB().WithContext(c.Request.Context())
	var rec model.BorrowRecord
	if err := db.Preload("Book").First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "borrow record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve borrow record"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ReturnBorrow checks a copy back in, marking the record returned and
// incrementing the book's available count.
func (h *Handler) ReturnBorrow(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rec, err := h.store.ReturnBorrow(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "borrow record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to return book"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-resource-backend/internal/model"
)

type bookInput struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	ISBN        string `json:"isbn" binding:"required"`
	Category    string `json:"category" binding:"omitempty,oneof=general fiction non-fiction science history reference"`
	TotalCopies *int   `json:"total_copies" binding:"required,gte=0"`
}

// CreateBook adds a title to the catalog. Available copies always start
// equal to the total, whatever the client sends.
func (h *Handler) CreateBook(c *gin.Context) {
	var in bookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	db := h.store.DB().WithContext(c.Request.Context())
	var count int64
	if err := db.Model(&model.Book{}).Where("isbn = ?", in.ISBN).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create book"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book with this isbn already exists"})
		return
	}
	category := in.Category
	if category == "" {
		category = "general"
	}
	book := model.Book{
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		Category:        category,
		TotalCopies:     *in.TotalCopies,
		AvailableCopies: *in.TotalCopies,
	}
	if err := db.Create(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "book with this isbn already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create book"})
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *Handler) ListBooks(c *gin.Context) {
	db := h.store.DB().WithContext(c.Request.Context())
	if category := c.Query("category"); category != "" {
		db = db.Where("category = ?", category)
	}
	var books []model.Book
	if err := db.Order("id ASC").Find(&books).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list books"})
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	db := h.store.DB().WithContext(c.Request.Context())
	var book model.Book
	if err := db.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve book"})
		return
	}
	c.JSON(http.StatusOK, book)
}

type bookUpdateInput struct {
	Title    *string `json:"title"`
	Author   *string `json:"author"`
	Category *string `json:"category" binding:"omitempty,oneof=general fiction non-fiction science history reference"`
}

// UpdateBook changes descriptive fields only. Copy counts are owned by
// the borrow and return flows and cannot be edited here.
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in bookUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	db := h.store.DB().WithContext(c.Request.Context())
	var book model.Book
	if err := db.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve book"})
		return
	}
	updates := map[string]any{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Author != nil {
		updates["author"] = *in.Author
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if len(updates) > 0 {
		if err := db.Model(&book).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update book"})
			return
		}
		if err := db.First(&book, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve book"})
			return
		}
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	db := h.store.DB().WithContext(c.Request.Context())
	res := db.Delete(&model.Book{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete book"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

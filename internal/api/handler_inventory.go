package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-resource-backend/internal/model"
)

type inventoryItemInput struct {
	Name       string `json:"name" binding:"required"`
	Category   string `json:"category" binding:"required,oneof=stationery equipment furniture other"`
	Quantity   *int   `json:"quantity" binding:"required,gte=0"`
	Threshold  *int   `json:"threshold" binding:"required,gte=0"`
	Department string `json:"department" binding:"required"`
}

// CreateItem adds a stock item.
func (h *Handler) CreateItem(c *gin.Context) {
	var in inventoryItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := model.InventoryItem{
		Name:       in.Name,
		Category:   in.Category,
		Quantity:   *in.Quantity,
		Threshold:  *in.Threshold,
		Department: in.Department,
	}
	if err := h.store.DB().WithContext(c.Request.Context()).Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ListItems returns stock items, optionally filtered by category and/or
// department.
func (h *Handler) ListItems(c *gin.Context) {
	q := h.store.DB().WithContext(c.Request.Context()).Model(&model.InventoryItem{})
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if department := c.Query("department"); department != "" {
		q = q.Where("department = ?", department)
	}

	var items []model.InventoryItem
	if err := q.Order("id ASC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// LowStockItems returns items at or below their reorder threshold.
func (h *Handler) LowStockItems(c *gin.Context) {
	items, err := h.store.LowStockItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetItem returns a single stock item by id.
func (h *Handler) GetItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var item model.InventoryItem
	if err := h.store.DB().WithContext(c.Request.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve item"})
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateItem replaces a stock item's fields. Every write also touches
// last_restocked, whether or not the quantity changed.
func (h *Handler) UpdateItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var in inventoryItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())

	var item model.InventoryItem
	if err := db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve item"})
		}
		return
	}

	err := db.Model(&item).
		Updates(map[string]any{
			"name":       in.Name,
			"category":   in.Category,
			"quantity":   *in.Quantity,
			"threshold":  *in.Threshold,
			"department": in.Department,
		}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update item"})
		return
	}
	if err := db.First(&item, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes a stock item.
func (h *Handler) DeleteItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	res := h.store.DB().WithContext(c.Request.Context()).Delete(&model.InventoryItem{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete item"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

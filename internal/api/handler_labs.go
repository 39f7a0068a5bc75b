package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-resource-backend/internal/model"
)

type labInput struct {
	LabNumber   string `json:"lab_number" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required,gt=0"`
	Equipment   string `json:"equipment"`
	IsAvailable *bool  `json:"is_available"`
}

// CreateLab registers a new lab room.
func (h *Handler) CreateLab(c *gin.Context) {
	var in labInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())

	var count int64
	if err := db.Model(&model.Lab{}).Where("lab_number = ?", in.LabNumber).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lab"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lab number already exists"})
		return
	}

	lab := model.Lab{
		LabNumber:   in.LabNumber,
		Capacity:    in.Capacity,
		Equipment:   in.Equipment,
		IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
	}
	if err := db.Create(&lab).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lab number already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lab"})
		return
	}
	c.JSON(http.StatusCreated, lab)
}

// ListLabs returns all labs.
func (h *Handler) ListLabs(c *gin.Context) {
	var labs []model.Lab
	if err := h.store.DB().WithContext(c.Request.Context()).Order("id ASC").Find(&labs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve labs"})
		return
	}
	c.JSON(http.StatusOK, labs)
}

// AvailableLabs returns only labs whose availability flag is set.
func (h *Handler) AvailableLabs(c *gin.Context) {
	var labs []model.Lab
	err := h.store.DB().WithContext(c.Request.Context()).
		Where("is_available = ?", true).
		Order("id ASC").
		Find(&labs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve labs"})
		return
	}
	c.JSON(http.StatusOK, labs)
}

// GetLab returns a single lab by id.
func (h *Handler) GetLab(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var lab model.Lab
	if err := h.store.DB().WithContext(c.Request.Context()).First(&lab, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve lab"})
		}
		return
	}
	c.JSON(http.StatusOK, lab)
}

// UpdateLab replaces a lab's fields.
func (h *Handler) UpdateLab(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var in labInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())

	var lab model.Lab
	if err := db.First(&lab, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve lab"})
		}
		return
	}

	// An absent flag keeps the stored value; only an explicit flag flips it.
	isAvailable := lab.IsAvailable
	if in.IsAvailable != nil {
		isAvailable = *in.IsAvailable
	}
	err := db.Model(&lab).Updates(map[string]any{
		"lab_number":   in.LabNumber,
		"capacity":     in.Capacity,
		"equipment":    in.Equipment,
		"is_available": isAvailable,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update lab"})
		return
	}
	if err := db.First(&lab, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve lab"})
		return
	}
	c.JSON(http.StatusOK, lab)
}

// DeleteLab removes a lab.
func (h *Handler) DeleteLab(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	res := h.store.DB().WithContext(c.Request.Context()).Delete(&model.Lab{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete lab"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

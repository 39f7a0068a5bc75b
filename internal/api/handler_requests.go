package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-resource-backend/internal/model"
	"school-resource-backend/internal/mw"
)

type resourceRequestInput struct {
	ResourceType string              `json:"resource_type" binding:"required"`
	ResourceName string              `json:"resource_name" binding:"required"`
	Quantity     int                 `json:"quantity" binding:"required,gt=0"`
	Description  string              `json:"description"`
	Status       model.RequestStatus `json:"status" binding:"omitempty,oneof=pending fulfilled rejected"`
}

// CreateRequest records a new resource request. The requester is always the
// authenticated caller and the status always starts at pending; both are
// ignored if supplied in the body.
func (h *Handler) CreateRequest(c *gin.Context) {
	var in resourceRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := mw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	req := model.ResourceRequest{
		TeacherID:    userID,
		ResourceType: in.ResourceType,
		ResourceName: in.ResourceName,
		Quantity:     in.Quantity,
		Description:  in.Description,
		Status:       model.RequestPending,
	}
	if err := h.store.DB().WithContext(c.Request.Context()).Create(&req).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}
	c.JSON(http.StatusCreated, req)
}

// ListRequests returns resource requests, optionally filtered by status
// and/or requester.
func (h *Handler) ListRequests(c *gin.Context) {
	q := h.store.DB().WithContext(c.Request.Context()).
		Model(&model.ResourceRequest{}).
		Preload("Teacher")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if teacher := c.Query("teacher"); teacher != "" {
		q = q.Where("teacher_id = ?", teacher)
	}

	var reqs []model.ResourceRequest
	if err := q.Order("id ASC").Find(&reqs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve requests"})
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// RecentRequests returns the ten most recently created requests, newest
// first. Ties on the creation timestamp fall back to insertion order.
func (h *Handler) RecentRequests(c *gin.Context) {
	var reqs []model.ResourceRequest
	err := h.store.DB().WithContext(c.Request.Context()).
		Preload("Teacher").
		Order("created_at DESC, id DESC").
		Limit(10).
		Find(&reqs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve requests"})
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// GetRequest returns a single resource request by id.
func (h *Handler) GetRequest(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req model.ResourceRequest
	err := h.store.DB().WithContext(c.Request.Context()).
		Preload("Teacher").
		First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve request"})
		}
		return
	}
	c.JSON(http.StatusOK, req)
}

// UpdateRequest replaces the mutable fields of a request. Any status in the
// enum is accepted from any caller with write access; there is no workflow
// guard on transitions.
func (h *Handler) UpdateRequest(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var in resourceRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Status == "" {
		in.Status = model.RequestPending
	}

	db := h.store.DB().WithContext(c.Request.Context())

	var req model.ResourceRequest
	if err := db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve request"})
		}
		return
	}

	err := db.Model(&req).Updates(map[string]any{
		"resource_type": in.ResourceType,
		"resource_name": in.ResourceName,
		"quantity":      in.Quantity,
		"description":   in.Description,
		"status":        in.Status,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update request"})
		return
	}
	if err := db.Preload("Teacher").First(&req, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve request"})
		return
	}
	c.JSON(http.StatusOK, req)
}

// DeleteRequest removes a resource request.
func (h *Handler) DeleteRequest(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	res := h.store.DB().WithContext(c.Request.Context()).Delete(&model.ResourceRequest{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete request"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-resource-backend/internal/model"
	"school-resource-backend/internal/mw"
)

type bookingInput struct {
	LabID        uint                `json:"lab" binding:"required"`
	Date         string              `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime    string              `json:"start_time" binding:"required,datetime=15:04"`
	EndTime      string              `json:"end_time" binding:"required,datetime=15:04"`
	Requirements string              `json:"requirements"`
	Status       model.BookingStatus `json:"status" binding:"omitempty,oneof=pending approved rejected"`
	Notes        string              `json:"notes"`
}

// CreateBooking records a lab booking for the authenticated caller. The
// teacher field is always the caller and the status always starts pending.
// Overlapping bookings for the same lab/time are accepted; approval is a
// manual status decision.
func (h *Handler) CreateBooking(c *gin.Context) {
	var in bookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := mw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())

	var lab model.Lab
	if err := db.First(&lab, in.LabID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		}
		return
	}

	booking := model.LabBooking{
		LabID:        lab.ID,
		TeacherID:    userID,
		Date:         in.Date,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Requirements: in.Requirements,
		Status:       model.BookingPending,
		Notes:        in.Notes,
	}
	if err := db.Create(&booking).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// ListBookings returns lab bookings, optionally filtered by status, teacher
// and/or lab.
func (h *Handler) ListBookings(c *gin.Context) {
	q := h.store.DB().WithContext(c.Request.Context()).
		Model(&model.LabBooking{}).
		Preload("Lab").
		Preload("Teacher")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if teacher := c.Query("teacher"); teacher != "" {
		q = q.Where("teacher_id = ?", teacher)
	}
	if lab := c.Query("lab"); lab != "" {
		q = q.Where("lab_id = ?", lab)
	}

	var bookings []model.LabBooking
	if err := q.Order("id ASC").Find(&bookings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve bookings"})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// RecentBookings returns the ten most recently created bookings, newest
// first, ties broken by insertion order.
func (h *Handler) RecentBookings(c *gin.Context) {
	var bookings []model.LabBooking
	err := h.store.DB().WithContext(c.Request.Context()).
		Preload("Lab").
		Preload("Teacher").
		Order("created_at DESC, id DESC").
		Limit(10).
		Find(&bookings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve bookings"})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking returns a single booking by id.
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var booking model.LabBooking
	err := h.store.DB().WithContext(c.Request.Context()).
		Preload("Lab").
		Preload("Teacher").
		First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve booking"})
		}
		return
	}
	c.JSON(http.StatusOK, booking)
}

// UpdateBooking replaces the mutable fields of a booking, status included.
// No transition guard is applied.
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var in bookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Status == "" {
		in.Status = model.BookingPending
	}

	db := h.store.DB().WithContext(c.Request.Context())

	var booking model.LabBooking
	if err := db.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve booking"})
		}
		return
	}

	if in.LabID != booking.LabID {
		var lab model.Lab
		if err := db.First(&lab, in.LabID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update booking"})
			}
			return
		}
	}

	err := db.Model(&booking).Updates(map[string]any{
		"lab_id":       in.LabID,
		"date":         in.Date,
		"start_time":   in.StartTime,
		"end_time":     in.EndTime,
		"requirements": in.Requirements,
		"status":       in.Status,
		"notes":        in.Notes,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update booking"})
		return
	}
	if err := db.Preload("Lab").Preload("Teacher").First(&booking, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve booking"})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// DeleteBooking removes a booking.
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	res := h.store.DB().WithContext(c.Request.Context()).Delete(&model.LabBooking{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete booking"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

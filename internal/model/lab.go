package model

import "time"

// BookingStatus is the lifecycle tag of a lab booking.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
)

// Lab represents a bookable laboratory room.
type Lab struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	LabNumber   string `gorm:"uniqueIndex;size:20;not null" json:"lab_number"`
	Capacity    int    `gorm:"not null" json:"capacity"`
	Equipment   string `gorm:"type:text" json:"equipment"`
	// No gorm-level default: a false here would be dropped from the INSERT
	// in favor of the column default. CreateLab decides the default instead.
	IsAvailable bool `gorm:"not null" json:"is_available"`
}

// LabBooking reserves a lab for a teacher on a given date and time range.
// Overlapping bookings for the same lab are not rejected; approval is a
// manual status change by lab staff.
type LabBooking struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	LabID        uint          `gorm:"index;not null" json:"lab_id"`
	TeacherID    uint          `gorm:"index;not null" json:"teacher_id"`
	Date         string        `gorm:"size:10;not null" json:"date"`
	StartTime    string        `gorm:"size:8;not null" json:"start_time"`
	EndTime      string        `gorm:"size:8;not null" json:"end_time"`
	Requirements string        `gorm:"type:text" json:"requirements"`
	Status       BookingStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Notes        string        `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time     `json:"created_at"`

	// Associations
	Lab     *Lab  `gorm:"foreignKey:LabID;constraint:OnDelete:CASCADE" json:"lab,omitempty"`
	Teacher *User `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
}

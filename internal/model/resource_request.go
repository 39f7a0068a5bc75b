package model

import "time"

// RequestStatus is the lifecycle tag of a resource request. Any transition
// between values is accepted; there is no workflow state machine.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestRejected  RequestStatus = "rejected"
)

// ResourceRequest records an equipment or material request by a teacher.
// The teacher field is always the authenticated caller; a caller-supplied
// value is ignored on create.
type ResourceRequest struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	TeacherID    uint          `gorm:"index;not null" json:"teacher_id"`
	ResourceType string        `gorm:"size:100;not null" json:"resource_type"`
	ResourceName string        `gorm:"size:255;not null" json:"resource_name"`
	Quantity     int           `gorm:"not null" json:"quantity"`
	Description  string        `gorm:"type:text" json:"description"`
	Status       RequestStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Associations
	Teacher *User `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
}

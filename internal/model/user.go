package model

import "time"

// Role classifies an account. It is a plain value compared at operation
// boundaries, not a permission object.
type Role string

const (
	RoleTeacher     Role = "teacher"
	RoleLabTech     Role = "labtech"
	RoleStorekeeper Role = "storekeeper"
	RoleLibrarian   Role = "librarian"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleLabTech, RoleStorekeeper, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

// User is a registered account with a fixed role classification.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	Email        string    `gorm:"size:254" json:"email"`
	Role         Role      `gorm:"size:20;not null;index" json:"role"`
	Department   *string   `gorm:"size:100" json:"department"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

package models

import "time"

// User roles accepted at the API boundary.
const (
	RoleAdmin   = "admin"
	RoleUser    = "user"
	RoleManager = "manager"
)

// User represents an end-user account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Name  string `gorm:"type:text;not null" json:"name"`               // Display name.
	Email string `gorm:"type:text;not null;uniqueIndex" json:"email"`  // Unique email address.
	Role  string `gorm:"type:text;not null;default:user" json:"role"`  // One of admin, user, manager.
	Bio   string `gorm:"type:text" json:"bio"`                         // Sanitized profile markup.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"` // Last update timestamp.
}

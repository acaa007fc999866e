package models

import "time"

// Valid values for Profile.Role. Every account is either an
// administrator or a field technician.
const (
	RoleAdmin   = "admin"
	RoleTecnico = "tecnico"
)

// Profile represents the application-level record of a user account.
// Its primary key is the id of the identity held by the external auth
// backend; credential material never lives here.
type Profile struct {
	ID        string    `gorm:"primaryKey" json:"id"` // identity id from the auth backend
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName  *string   `json:"full_name"`
	Role      string    `gorm:"not null;default:'tecnico'" json:"role"` // "admin" or "tecnico"
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}

// IsAdmin reports whether the profile carries the administrator role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// ValidRole reports whether role is one of the two enumerated values.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleTecnico
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a staff member of a tenant (administrator or technician)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null;uniqueIndex:idx_users_tenant_email" json:"email"`
	Role      string         `gorm:"not null;default:'technician'" json:"role"` // "admin" or "technician"
	TenantID  uint           `gorm:"not null;index;uniqueIndex:idx_users_tenant_email" json:"tenant_id"`
	Tenant    Tenant         `gorm:"foreignKey:TenantID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin returns true if the user has the administrator role
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// IsTechnician returns true if the user has the technician role
func (u *User) IsTechnician() bool {
	return u.Role == "technician"
}

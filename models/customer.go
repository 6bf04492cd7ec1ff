package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents a customer contact record of a repair shop
type Customer struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FirstName  *string        `json:"first_name"` // optional
	FamilyName string         `gorm:"not null" json:"family_name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
	TenantID   uint           `gorm:"not null;index" json:"tenant_id"`
	Tenant     Tenant         `gorm:"foreignKey:TenantID" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

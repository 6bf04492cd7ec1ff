package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is a catalog entry for labor offered by a repair shop
// (e.g. "Minor Fill", "Touch up"). Cost is the current unit price.
type Service struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null;uniqueIndex:idx_services_tenant_name" json:"name"`
	Cost      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost"`
	TenantID  uint            `gorm:"not null;index;uniqueIndex:idx_services_tenant_name" json:"tenant_id"`
	Tenant    Tenant          `gorm:"foreignKey:TenantID" json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// Part is a catalog entry for a physical part (e.g. "Headlight").
// Cost is the current unit price.
type Part struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null;uniqueIndex:idx_parts_tenant_name" json:"name"`
	Cost      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost"`
	TenantID  uint            `gorm:"not null;index;uniqueIndex:idx_parts_tenant_name" json:"tenant_id"`
	Tenant    Tenant          `gorm:"foreignKey:TenantID" json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Part model
func (Part) TableName() string {
	return "parts"
}

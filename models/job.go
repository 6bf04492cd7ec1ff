package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JobStatus is the repair lifecycle axis of a job. The transition
// open -> completed is one-way; nothing ever sets a job back to open.
type JobStatus string

const (
	JobStatusOpen      JobStatus = "open"
	JobStatusCompleted JobStatus = "completed"
)

// CanAddItems reports whether line items may still be added
func (s JobStatus) CanAddItems() bool {
	return s == JobStatusOpen
}

// PaymentStatus is the billing axis of a job, independent from JobStatus.
// The transition unpaid -> paid is one-way.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Job is a repair order for one customer. It accumulates service and part
// line items; TotalCost is recomputed and persisted on every line-item
// mutation and stays null until the first line item is ever added.
type Job struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	JobDate       Date                `gorm:"type:date;not null" json:"job_date"`
	CustomerID    uint                `gorm:"not null;index" json:"customer_id"`
	Customer      Customer            `gorm:"foreignKey:CustomerID" json:"customer"`
	TotalCost     decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"total_cost"`
	Status        JobStatus           `gorm:"type:varchar(16);not null;default:'open'" json:"status"`
	PaymentStatus PaymentStatus       `gorm:"type:varchar(16);not null;default:'unpaid'" json:"payment_status"`
	PaymentRef    *string             `gorm:"size:64" json:"payment_ref,omitempty"` // set when the job is paid
	PhotoS3Key    *string             `json:"photo_s3_key,omitempty"`               // S3 key for the vehicle condition photo
	PhotoURL      *string             `gorm:"-" json:"photo_url,omitempty"`         // computed field, presigned URL for the photo
	TenantID      uint                `gorm:"not null;index" json:"tenant_id"`
	Tenant        Tenant              `gorm:"foreignKey:TenantID" json:"-"`
	ServiceItems  []JobService        `gorm:"foreignKey:JobID" json:"service_items,omitempty"`
	PartItems     []JobPart           `gorm:"foreignKey:JobID" json:"part_items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Job model
func (Job) TableName() string {
	return "jobs"
}

// Completed returns true once the repair work is finished
func (j *Job) Completed() bool {
	return j.Status == JobStatusCompleted
}

// Paid returns true once the job has been billed and paid
func (j *Job) Paid() bool {
	return j.PaymentStatus == PaymentStatusPaid
}

// JobService is a line item attaching a catalog service to a job.
// A job references a given service at most once; adding the same pair
// again accumulates the quantity.
type JobService struct {
	JobID     uint      `gorm:"primaryKey;autoIncrement:false" json:"job_id"`
	ServiceID uint      `gorm:"primaryKey;autoIncrement:false" json:"service_id"`
	Service   Service   `gorm:"foreignKey:ServiceID" json:"service"`
	Qty       int       `gorm:"not null;check:qty >= 1" json:"qty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the JobService model
func (JobService) TableName() string {
	return "job_services"
}

// JobPart is a line item attaching a catalog part to a job.
type JobPart struct {
	JobID     uint      `gorm:"primaryKey;autoIncrement:false" json:"job_id"`
	PartID    uint      `gorm:"primaryKey;autoIncrement:false" json:"part_id"`
	Part      Part      `gorm:"foreignKey:PartID" json:"part"`
	Qty       int       `gorm:"not null;check:qty >= 1" json:"qty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the JobPart model
func (JobPart) TableName() string {
	return "job_parts"
}

// AllModels lists every model for AutoMigrate, in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&Tenant{}, &User{}, &Customer{}, &Service{}, &Part{},
		&Job{}, &JobService{}, &JobPart{},
	}
}

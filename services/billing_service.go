package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-api/models"
)

// Line item types accepted by AddLineItem
const (
	ItemTypeService = "service"
	ItemTypePart    = "part"
)

// BillingService computes job totals and drives the job lifecycle.
// Every method takes the tenant ID explicitly; there is no ambient tenant
// state, and every query is scoped by tenant_id.
type BillingService struct {
	db              *gorm.DB
	gracePeriodDays int
}

var billingServiceInstance *BillingService

// NewBillingService creates a billing service on top of the given database.
// gracePeriodDays is the number of days after the job date before an unpaid
// job is considered overdue.
func NewBillingService(db *gorm.DB, gracePeriodDays int) *BillingService {
	return &BillingService{db: db, gracePeriodDays: gracePeriodDays}
}

// InitBillingService initializes the global billing service instance
func InitBillingService(db *gorm.DB, gracePeriodDays int) *BillingService {
	billingServiceInstance = NewBillingService(db, gracePeriodDays)
	return billingServiceInstance
}

// GetBillingService returns the initialized billing service instance
func GetBillingService() *BillingService {
	return billingServiceInstance
}

// SetBillingService sets the billing service instance (primarily for testing)
func SetBillingService(s *BillingService) {
	billingServiceInstance = s
}

// GracePeriodDays returns the configured overdue grace period
func (s *BillingService) GracePeriodDays() int {
	return s.gracePeriodDays
}

// GetJob fetches a job within the tenant, with customer and line items loaded
func (s *BillingService) GetJob(tenantID, jobID uint) (*models.Job, error) {
	var job models.Job
	err := s.db.
		Preload("Customer").
		Preload("ServiceItems.Service").
		Preload("PartItems.Part").
		Where("tenant_id = ?", tenantID).
		First(&job, jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
		}
		return nil, err
	}
	return &job, nil
}

// ComputeTotalCost derives the job's total from its line items, priced at
// the current catalog costs. A job with line-item rows totals the exact sum;
// a job that never had any returns zero (its stored total stays null).
func (s *BillingService) ComputeTotalCost(tenantID, jobID uint) (decimal.Decimal, error) {
	var job models.Job
	if err := s.db.Where("tenant_id = ?", tenantID).First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
		}
		return decimal.Zero, err
	}
	return s.computeTotal(s.db, job.ID)
}

// computeTotal sums qty * current unit cost over both line item tables.
// It must run inside the same transaction as any write it accompanies so
// that concurrent AddLineItem calls cannot lose updates: the total is always
// rebuilt from all rows, never incremented from a stale read.
func (s *BillingService) computeTotal(tx *gorm.DB, jobID uint) (decimal.Decimal, error) {
	total := decimal.Zero

	var serviceItems []models.JobService
	if err := tx.Preload("Service").Where("job_id = ?", jobID).Find(&serviceItems).Error; err != nil {
		return decimal.Zero, err
	}
	for _, item := range serviceItems {
		line := item.Service.Cost.Mul(decimal.NewFromInt(int64(item.Qty))).Round(2)
		total = total.Add(line)
	}

	var partItems []models.JobPart
	if err := tx.Preload("Part").Where("job_id = ?", jobID).Find(&partItems).Error; err != nil {
		return decimal.Zero, err
	}
	for _, item := range partItems {
		line := item.Part.Cost.Mul(decimal.NewFromInt(int64(item.Qty))).Round(2)
		total = total.Add(line)
	}

	return total.Round(2), nil
}

// AddLineItem attaches qty units of a catalog service or part to an open
// job. Adding a pair that already exists accumulates the quantity. The line
// item write and the total recomputation happen in one transaction.
func (s *BillingService) AddLineItem(tenantID, jobID uint, itemType string, itemID uint, qty int) (*models.Job, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: qty must be at least 1, got %d", ErrValidation, qty)
	}
	if itemType != ItemTypeService && itemType != ItemTypePart {
		return nil, fmt.Errorf("%w: unknown item type %q", ErrValidation, itemType)
	}

	var job models.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).First(&job, jobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: job %d", ErrNotFound, jobID)
			}
			return err
		}
		if !job.Status.CanAddItems() {
			return fmt.Errorf("%w: job %d is completed and no longer accepts line items", ErrInvalidState, jobID)
		}

		switch itemType {
		case ItemTypeService:
			if err := s.upsertServiceItem(tx, tenantID, job.ID, itemID, qty); err != nil {
				return err
			}
		case ItemTypePart:
			if err := s.upsertPartItem(tx, tenantID, job.ID, itemID, qty); err != nil {
				return err
			}
		}

		total, err := s.computeTotal(tx, job.ID)
		if err != nil {
			return err
		}
		job.TotalCost = decimal.NewNullDecimal(total)
		return tx.Model(&job).Update("total_cost", job.TotalCost).Error
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *BillingService) upsertServiceItem(tx *gorm.DB, tenantID, jobID, serviceID uint, qty int) error {
	var svc models.Service
	if err := tx.Where("tenant_id = ?", tenantID).First(&svc, serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: service %d", ErrNotFound, serviceID)
		}
		return err
	}

	var item models.JobService
	err := tx.Where("job_id = ? AND service_id = ?", jobID, serviceID).First(&item).Error
	switch {
	case err == nil:
		item.Qty += qty
		return tx.Model(&item).Update("qty", item.Qty).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.JobService{JobID: jobID, ServiceID: serviceID, Qty: qty}
		return tx.Create(&item).Error
	default:
		return err
	}
}

func (s *BillingService) upsertPartItem(tx *gorm.DB, tenantID, jobID, partID uint, qty int) error {
	var part models.Part
	if err := tx.Where("tenant_id = ?", tenantID).First(&part, partID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: part %d", ErrNotFound, partID)
		}
		return err
	}

	var item models.JobPart
	err := tx.Where("job_id = ? AND part_id = ?", jobID, partID).First(&item).Error
	switch {
	case err == nil:
		item.Qty += qty
		return tx.Model(&item).Update("qty", item.Qty).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.JobPart{JobID: jobID, PartID: partID, Qty: qty}
		return tx.Create(&item).Error
	default:
		return err
	}
}

// MarkCompleted latches the job from open to completed. The transition is
// one-way; completing an already completed job is an invalid state error.
// A job with zero line items may still be completed.
func (s *BillingService) MarkCompleted(tenantID, jobID uint) (*models.Job, error) {
	var job models.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).First(&job, jobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: job %d", ErrNotFound, jobID)
			}
			return err
		}
		if job.Completed() {
			return fmt.Errorf("%w: job %d is already completed", ErrInvalidState, jobID)
		}
		job.Status = models.JobStatusCompleted
		return tx.Model(&job).Update("status", models.JobStatusCompleted).Error
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkPaid latches the job from unpaid to paid and mints a payment
// reference. The transition is one-way; paying an already paid job is an
// invalid state error. Payment does not require completion.
func (s *BillingService) MarkPaid(tenantID, jobID uint) (*models.Job, error) {
	var job models.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).First(&job, jobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: job %d", ErrNotFound, jobID)
			}
			return err
		}
		if job.Paid() {
			return fmt.Errorf("%w: job %d is already paid", ErrInvalidState, jobID)
		}
		ref := uuid.NewString()
		job.PaymentStatus = models.PaymentStatusPaid
		job.PaymentRef = &ref
		return tx.Model(&job).Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"payment_ref":    ref,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// IsOverdue reports whether payment for the job is outstanding beyond the
// grace period. A job dated exactly gracePeriodDays ago is not yet overdue;
// one day older is. Completion does not matter: any unpaid job ages toward
// overdue.
func (s *BillingService) IsOverdue(job *models.Job, today models.Date) bool {
	if job.Paid() {
		return false
	}
	return job.JobDate.DaysUntil(today) > s.gracePeriodDays
}

// DaysOverdue returns how many days past the grace period the job is,
// clamped at zero. Used for sorting and display in billing views.
func (s *BillingService) DaysOverdue(job *models.Job, today models.Date) int {
	if job.Paid() {
		return 0
	}
	days := job.JobDate.DaysUntil(today) - s.gracePeriodDays
	if days < 0 {
		return 0
	}
	return days
}

// ListOverdue returns the tenant's overdue jobs, oldest first
func (s *BillingService) ListOverdue(tenantID uint, today models.Date) ([]models.Job, error) {
	cutoff := today.AddDays(-s.gracePeriodDays)
	var jobs []models.Job
	err := s.db.
		Preload("Customer").
		Where("tenant_id = ? AND payment_status = ? AND job_date < ?",
			tenantID, models.PaymentStatusUnpaid, cutoff).
		Order("job_date ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/torquehub/torquehub-api/models"
)

type billingFixture struct {
	db      *gorm.DB
	billing *BillingService

	tenant      models.Tenant
	otherTenant models.Tenant
	customer    models.Customer

	headlight  models.Part // 35.65
	fender     models.Part // 260.76
	minorFill  models.Service // 43.21
	touchUp    models.Service // 34.99
	freeCheck  models.Service // 0.00
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	assert.NoError(t, err)
	return d
}

func setupBillingTest(t *testing.T) *billingFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(models.AllModels()...))

	f := &billingFixture{
		db:      db,
		billing: NewBillingService(db, 30),
	}

	f.tenant = models.Tenant{Name: "Demo Auto Body", Slug: "demo-auto-body", Active: true}
	assert.NoError(t, db.Create(&f.tenant).Error)
	f.otherTenant = models.Tenant{Name: "Rival Garage", Slug: "rival-garage", Active: true}
	assert.NoError(t, db.Create(&f.otherTenant).Error)

	f.customer = models.Customer{FamilyName: "Harkness", Email: "jack@example.com", TenantID: f.tenant.ID}
	assert.NoError(t, db.Create(&f.customer).Error)

	f.headlight = models.Part{Name: "Headlight", Cost: mustDecimal(t, "35.65"), TenantID: f.tenant.ID}
	f.fender = models.Part{Name: "Left fender", Cost: mustDecimal(t, "260.76"), TenantID: f.tenant.ID}
	assert.NoError(t, db.Create(&f.headlight).Error)
	assert.NoError(t, db.Create(&f.fender).Error)

	f.minorFill = models.Service{Name: "Minor Fill", Cost: mustDecimal(t, "43.21"), TenantID: f.tenant.ID}
	f.touchUp = models.Service{Name: "Touch up", Cost: mustDecimal(t, "34.99"), TenantID: f.tenant.ID}
	f.freeCheck = models.Service{Name: "Courtesy inspection", Cost: decimal.Zero, TenantID: f.tenant.ID}
	assert.NoError(t, db.Create(&f.minorFill).Error)
	assert.NoError(t, db.Create(&f.touchUp).Error)
	assert.NoError(t, db.Create(&f.freeCheck).Error)

	return f
}

func (f *billingFixture) createJob(t *testing.T, date models.Date) models.Job {
	t.Helper()
	job := models.Job{
		JobDate:       date,
		CustomerID:    f.customer.ID,
		Status:        models.JobStatusOpen,
		PaymentStatus: models.PaymentStatusUnpaid,
		TenantID:      f.tenant.ID,
	}
	assert.NoError(t, f.db.Create(&job).Error)
	return job
}

func TestAddLineItem_ComputesRunningTotal(t *testing.T) {
	f := setupBillingTest(t)
	job := f.createJob(t, models.NewDate(2023, time.December, 11))

	job1, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypePart, f.headlight.ID, 2)
	assert.NoError(t, err)
	assert.True(t, job1.TotalCost.Valid)
	assert.True(t, job1.TotalCost.Decimal.Equal(mustDecimal(t, "71.30")))

	job2, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypePart, f.fender.ID, 1)
	assert.NoError(t, err)
	assert.True(t, job2.TotalCost.Decimal.Equal(mustDecimal(t, "332.06")))

	job3, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypeService, f.minorFill.ID, 1)
	assert.NoError(t, err)
	assert.True(t, job3.TotalCost.Decimal.Equal(mustDecimal(t, "375.27")))

	job4, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypeService, f.touchUp.ID, 1)
	assert.NoError(t, err)
	assert.True(t, job4.TotalCost.Decimal.Equal(mustDecimal(t, "410.26")))

	// Persisted total matches the returned one
	var stored models.Job
	assert.NoError(t, f.db.First(&stored, job.ID).Error)
	assert.True(t, stored.TotalCost.Valid)
	assert.True(t, stored.TotalCost.Decimal.Equal(mustDecimal(t, "410.26")))
}

func TestAddLineItem_AccumulatesQuantity(t *testing.T) {
	f := setupBillingTest(t)
	job := f.createJob(t, models.NewDate(2024, time.February, 2))

	_, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypePart, f.headlight.ID, 1)
	assert.NoError(t, err)
	updated, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypePart, f.headlight.ID, 2)
	assert.NoError(t, err)

	var items []models.JobPart
	assert.NoError(t, f.db.Where("job_id = ?", job.ID).Find(&items).Error)
	assert.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Qty)

	assert.True(t, updated.TotalCost.Decimal.Equal(mustDecimal(t, "106.95")))
}

func TestAddLineItem_Validation(t *testing.T) {
	f := setupBillingTest(t)
	job := f.createJob(t, models.Today())

	tests := []struct {
		name     string
		itemType string
		itemID   uint
		qty      int
		wantErr  error
	}{
		{
			name:     "zero quantity",
			itemType: ItemTypePart,
			itemID:   f.headlight.ID,
			qty:      0,
			wantErr:  ErrValidation,
		},
		{
			name:     "negative quantity",
			itemType: ItemTypeService,
			itemID:   f.minorFill.ID,
			qty:      -3,
			wantErr:  ErrValidation,
		},
		{
			name:     "unknown item type",
			itemType: "labour",
			itemID:   f.minorFill.ID,
			qty:      1,
			wantErr:  ErrValidation,
		},
		{
			name:     "unknown part",
			itemType: ItemTypePart,
			itemID:   99999,
			qty:      1,
			wantErr:  ErrNotFound,
		},
		{
			name:     "unknown service",
			itemType: ItemTypeService,
			itemID:   99999,
			qty:      1,
			wantErr:  ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.billing.AddLineItem(f.tenant.ID, job.ID, tt.itemType, tt.itemID, tt.qty)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// None of the failed attempts may have touched the job
	var stored models.Job
	assert.NoError(t, f.db.First(&stored, job.ID).Error)
	assert.False(t, stored.TotalCost.Valid)
}

func TestAddLineItem_UnknownJob(t *testing.T) {
	f := setupBillingTest(t)

	_, err := f.billing.AddLineItem(f.tenant.ID, 404, ItemTypePart, f.headlight.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddLineItem_CompletedJobRejected(t *testing.T) {
	f := setupBillingTest(t)
	job := f.createJob(t, models.NewDate(2024, time.March, 1))

	_, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypePart, f.headlight.ID, 1)
	assert.NoError(t, err)
	_, err = f.billing.MarkCompleted(f.tenant.ID, job.ID)
	assert.NoError(t, err)

	_, err = f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypePart, f.fender.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidState)

	// Items and total are unchanged
	var items []models.JobPart
	assert.NoError(t, f.db.Where("job_id = ?", job.ID).Find(&items).Error)
	assert.Len(t, items, 1)

	var stored models.Job
	assert.NoError(t, f.db.First(&stored, job.ID).Error)
	assert.True(t, stored.TotalCost.Decimal.Equal(mustDecimal(t, "35.65")))
}

func TestAddLineItem_TenantIsolation(t *testing.T) {
	f := setupBillingTest(t)
	job := f.createJob(t, models.Today())

	// A job is invisible from another tenant
	_, err := f.billing.AddLineItem(f.otherTenant.ID, job.ID, ItemTypePart, f.headlight.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// A catalog item from another tenant cannot be attached
	foreignPart := models.Part{Name: "Spoiler", Cost: mustDecimal(t, "120.00"), TenantID: f.otherTenant.ID}
	assert.NoError(t, f.db.Create(&foreignPart).Error)

	_, err = f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypePart, foreignPart.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTotalCost_NullUntilFirstItem(t *testing.T) {
	f := setupBillingTest(t)
	job := f.createJob(t, models.Today())

	var stored models.Job
	assert.NoError(t, f.db.First(&stored, job.ID).Error)
	assert.False(t, stored.TotalCost.Valid, "total must stay null before any line item")

	// A zero-cost line item yields a real zero total, distinct from null
	updated, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypeService, f.freeCheck.ID, 1)
	assert.NoError(t, err)
	assert.True(t, updated.TotalCost.Valid)
	assert.True(t, updated.TotalCost.Decimal.IsZero())
}

func TestComputeTotalCost_Idempotent(t *testing.T) {
	f := setupBillingTest(t)
	job := f.createJob(t, models.Today())

	_, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypePart, f.fender.ID, 2)
	assert.NoError(t, err)

	first, err := f.billing.ComputeTotalCost(f.tenant.ID, job.ID)
	assert.NoError(t, err)
	second, err := f.billing.ComputeTotalCost(f.tenant.ID, job.ID)
	assert.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.True(t, first.Equal(mustDecimal(t, "521.52")))
}

func TestComputeTotalCost_EmptyJobIsZero(t *testing.T) {
	f := setupBillingTest(t)
	job := f.createJob(t, models.Today())

	total, err := f.billing.ComputeTotalCost(f.tenant.ID, job.ID)
	assert.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestCatalogReprice_DoesNotRewriteStoredTotal(t *testing.T) {
	f := setupBillingTest(t)
	job := f.createJob(t, models.Today())

	_, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypeService, f.minorFill.ID, 1)
	assert.NoError(t, err)

	// Reprice the catalog service
	assert.NoError(t, f.db.Model(&models.Service{}).
		Where("id = ?", f.minorFill.ID).
		Update("cost", mustDecimal(t, "50.00")).Error)

	// The stored total still reflects the price at the last mutation
	var stored models.Job
	assert.NoError(t, f.db.First(&stored, job.ID).Error)
	assert.True(t, stored.TotalCost.Decimal.Equal(mustDecimal(t, "43.21")))

	// A derived total prices at the current catalog cost
	derived, err := f.billing.ComputeTotalCost(f.tenant.ID, job.ID)
	assert.NoError(t, err)
	assert.True(t, derived.Equal(mustDecimal(t, "50.00")))

	// The next line-item mutation reprices everything
	updated, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypeService, f.touchUp.ID, 1)
	assert.NoError(t, err)
	assert.True(t, updated.TotalCost.Decimal.Equal(mustDecimal(t, "84.99")))
}

func TestMarkCompleted(t *testing.T) {
	f := setupBillingTest(t)

	t.Run("completes an open job with zero line items", func(t *testing.T) {
		job := f.createJob(t, models.Today())

		completed, err := f.billing.MarkCompleted(f.tenant.ID, job.ID)
		assert.NoError(t, err)
		assert.True(t, completed.Completed())
		assert.False(t, completed.TotalCost.Valid)
	})

	t.Run("is a one-way latch", func(t *testing.T) {
		job := f.createJob(t, models.Today())

		_, err := f.billing.MarkCompleted(f.tenant.ID, job.ID)
		assert.NoError(t, err)
		_, err = f.billing.MarkCompleted(f.tenant.ID, job.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("unknown job", func(t *testing.T) {
		_, err := f.billing.MarkCompleted(f.tenant.ID, 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cross-tenant job is invisible", func(t *testing.T) {
		job := f.createJob(t, models.Today())
		_, err := f.billing.MarkCompleted(f.otherTenant.ID, job.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMarkPaid(t *testing.T) {
	f := setupBillingTest(t)

	t.Run("mints a payment reference", func(t *testing.T) {
		job := f.createJob(t, models.Today())

		paid, err := f.billing.MarkPaid(f.tenant.ID, job.ID)
		assert.NoError(t, err)
		assert.True(t, paid.Paid())
		assert.NotNil(t, paid.PaymentRef)
		assert.NotEmpty(t, *paid.PaymentRef)

		var stored models.Job
		assert.NoError(t, f.db.First(&stored, job.ID).Error)
		assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
		assert.Equal(t, *paid.PaymentRef, *stored.PaymentRef)
	})

	t.Run("does not require completion", func(t *testing.T) {
		job := f.createJob(t, models.Today())

		paid, err := f.billing.MarkPaid(f.tenant.ID, job.ID)
		assert.NoError(t, err)
		assert.False(t, paid.Completed())
		assert.True(t, paid.Paid())
	})

	t.Run("is a one-way latch", func(t *testing.T) {
		job := f.createJob(t, models.Today())

		_, err := f.billing.MarkPaid(f.tenant.ID, job.ID)
		assert.NoError(t, err)
		_, err = f.billing.MarkPaid(f.tenant.ID, job.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("unknown job", func(t *testing.T) {
		_, err := f.billing.MarkPaid(f.tenant.ID, 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestIsOverdue(t *testing.T) {
	f := setupBillingTest(t)
	today := models.NewDate(2024, time.June, 1)

	tests := []struct {
		name          string
		jobDate       models.Date
		paymentStatus models.PaymentStatus
		status        models.JobStatus
		want          bool
	}{
		{
			name:          "today is never overdue",
			jobDate:       today,
			paymentStatus: models.PaymentStatusUnpaid,
			status:        models.JobStatusOpen,
			want:          false,
		},
		{
			name:          "exactly at grace period boundary",
			jobDate:       today.AddDays(-30),
			paymentStatus: models.PaymentStatusUnpaid,
			status:        models.JobStatusOpen,
			want:          false,
		},
		{
			name:          "one day past grace period",
			jobDate:       today.AddDays(-31),
			paymentStatus: models.PaymentStatusUnpaid,
			status:        models.JobStatusOpen,
			want:          true,
		},
		{
			name:          "paid jobs never go overdue",
			jobDate:       today.AddDays(-400),
			paymentStatus: models.PaymentStatusPaid,
			status:        models.JobStatusCompleted,
			want:          false,
		},
		{
			name:          "incomplete unpaid jobs still age toward overdue",
			jobDate:       today.AddDays(-90),
			paymentStatus: models.PaymentStatusUnpaid,
			status:        models.JobStatusOpen,
			want:          true,
		},
		{
			name:          "completed unpaid jobs age the same way",
			jobDate:       today.AddDays(-90),
			paymentStatus: models.PaymentStatusUnpaid,
			status:        models.JobStatusCompleted,
			want:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &models.Job{
				JobDate:       tt.jobDate,
				Status:        tt.status,
				PaymentStatus: tt.paymentStatus,
			}
			assert.Equal(t, tt.want, f.billing.IsOverdue(job, today))
		})
	}
}

func TestDaysOverdue(t *testing.T) {
	f := setupBillingTest(t)
	today := models.NewDate(2024, time.June, 1)

	job := &models.Job{
		JobDate:       today.AddDays(-45),
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	assert.Equal(t, 15, f.billing.DaysOverdue(job, today))

	recent := &models.Job{
		JobDate:       today.AddDays(-10),
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	assert.Equal(t, 0, f.billing.DaysOverdue(recent, today))

	paid := &models.Job{
		JobDate:       today.AddDays(-400),
		PaymentStatus: models.PaymentStatusPaid,
	}
	assert.Equal(t, 0, f.billing.DaysOverdue(paid, today))
}

func TestListOverdue(t *testing.T) {
	f := setupBillingTest(t)
	today := models.NewDate(2024, time.June, 1)

	oldest := f.createJob(t, today.AddDays(-120))
	older := f.createJob(t, today.AddDays(-60))
	boundary := f.createJob(t, today.AddDays(-30))
	recent := f.createJob(t, today.AddDays(-5))

	// An ancient but paid job must not appear
	paid := f.createJob(t, today.AddDays(-200))
	_, err := f.billing.MarkPaid(f.tenant.ID, paid.ID)
	assert.NoError(t, err)

	// Another tenant's overdue job must not leak in
	foreignCustomer := models.Customer{FamilyName: "Foreign", TenantID: f.otherTenant.ID}
	assert.NoError(t, f.db.Create(&foreignCustomer).Error)
	foreignJob := models.Job{
		JobDate:       today.AddDays(-120),
		CustomerID:    foreignCustomer.ID,
		Status:        models.JobStatusOpen,
		PaymentStatus: models.PaymentStatusUnpaid,
		TenantID:      f.otherTenant.ID,
	}
	assert.NoError(t, f.db.Create(&foreignJob).Error)

	jobs, err := f.billing.ListOverdue(f.tenant.ID, today)
	assert.NoError(t, err)

	assert.Len(t, jobs, 2)
	assert.Equal(t, oldest.ID, jobs[0].ID)
	assert.Equal(t, older.ID, jobs[1].ID)

	for _, j := range jobs {
		assert.NotEqual(t, boundary.ID, j.ID)
		assert.NotEqual(t, recent.ID, j.ID)
		assert.NotEqual(t, paid.ID, j.ID)
		assert.NotEqual(t, foreignJob.ID, j.ID)
	}
}

func TestGetJob(t *testing.T) {
	f := setupBillingTest(t)
	job := f.createJob(t, models.NewDate(2023, time.December, 11))

	_, err := f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypePart, f.headlight.ID, 2)
	assert.NoError(t, err)
	_, err = f.billing.AddLineItem(f.tenant.ID, job.ID, ItemTypeService, f.minorFill.ID, 1)
	assert.NoError(t, err)

	t.Run("loads customer and line items", func(t *testing.T) {
		loaded, err := f.billing.GetJob(f.tenant.ID, job.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Harkness", loaded.Customer.FamilyName)
		assert.Len(t, loaded.PartItems, 1)
		assert.Len(t, loaded.ServiceItems, 1)
		assert.Equal(t, "Headlight", loaded.PartItems[0].Part.Name)
		assert.Equal(t, 2, loaded.PartItems[0].Qty)
	})

	t.Run("unknown job", func(t *testing.T) {
		_, err := f.billing.GetJob(f.tenant.ID, 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cross-tenant job is invisible", func(t *testing.T) {
		_, err := f.billing.GetJob(f.otherTenant.ID, job.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBillingServiceSingleton(t *testing.T) {
	original := GetBillingService()
	defer SetBillingService(original)

	f := setupBillingTest(t)
	SetBillingService(f.billing)
	assert.Equal(t, f.billing, GetBillingService())
	assert.Equal(t, 30, GetBillingService().GracePeriodDays())
}

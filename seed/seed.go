package seed

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-api/models"
	"github.com/torquehub/torquehub-api/services"
)

// Run populates a demo tenant with staff, customers, a catalog and two jobs
// mirroring the legacy system's sample data. It is idempotent: if the demo
// tenant already exists, nothing is written.
func Run(db *gorm.DB, gracePeriodDays int) error {
	var existing models.Tenant
	if err := db.Where("slug = ?", "demo-auto-body").First(&existing).Error; err == nil {
		log.Info().Msg("Demo tenant already seeded, skipping")
		return nil
	}

	tenant := models.Tenant{Name: "Demo Auto Body", Slug: "demo-auto-body", Active: true}
	if err := db.Create(&tenant).Error; err != nil {
		return fmt.Errorf("failed to create demo tenant: %w", err)
	}

	users := []models.User{
		{Auth0ID: "auth0|demo-admin", Name: "Dana Admin", Email: "admin@demo-auto-body.test", Role: "admin", TenantID: tenant.ID},
		{Auth0ID: "auth0|demo-tech", Name: "Terry Tech", Email: "tech@demo-auto-body.test", Role: "technician", TenantID: tenant.ID},
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to create demo users: %w", err)
	}

	first := "Sam"
	customers := []models.Customer{
		{FirstName: &first, FamilyName: "Winters", Email: "sam.winters@example.com", Phone: "555-0101", TenantID: tenant.ID},
		{FamilyName: "Okafor", Email: "okafor@example.com", Phone: "555-0102", TenantID: tenant.ID},
	}
	if err := db.Create(&customers).Error; err != nil {
		return fmt.Errorf("failed to create demo customers: %w", err)
	}

	catalogServices := []models.Service{
		{Name: "Minor Fill", Cost: decimal.RequireFromString("43.21"), TenantID: tenant.ID},
		{Name: "Touch up", Cost: decimal.RequireFromString("34.99"), TenantID: tenant.ID},
		{Name: "Full respray", Cost: decimal.RequireFromString("899.00"), TenantID: tenant.ID},
	}
	if err := db.Create(&catalogServices).Error; err != nil {
		return fmt.Errorf("failed to create demo services: %w", err)
	}

	parts := []models.Part{
		{Name: "Headlight", Cost: decimal.RequireFromString("35.65"), TenantID: tenant.ID},
		{Name: "Left fender", Cost: decimal.RequireFromString("260.76"), TenantID: tenant.ID},
		{Name: "Wing mirror", Cost: decimal.RequireFromString("74.50"), TenantID: tenant.ID},
	}
	if err := db.Create(&parts).Error; err != nil {
		return fmt.Errorf("failed to create demo parts: %w", err)
	}

	billing := services.NewBillingService(db, gracePeriodDays)

	// Job #1: completed but unpaid, line items as in the legacy sample.
	// The legacy export stored total_cost 410.22 for this job; recomputing
	// from these line items yields 410.26. The recomputed value wins here.
	job1 := models.Job{
		JobDate:       models.NewDate(2023, 12, 11),
		CustomerID:    customers[0].ID,
		Status:        models.JobStatusOpen,
		PaymentStatus: models.PaymentStatusUnpaid,
		TenantID:      tenant.ID,
	}
	if err := db.Create(&job1).Error; err != nil {
		return fmt.Errorf("failed to create demo job 1: %w", err)
	}
	job1Items := []struct {
		itemType string
		itemID   uint
		qty      int
	}{
		{services.ItemTypePart, parts[0].ID, 2},           // Headlight x2
		{services.ItemTypePart, parts[1].ID, 1},           // Left fender x1
		{services.ItemTypeService, catalogServices[0].ID, 1}, // Minor Fill x1
		{services.ItemTypeService, catalogServices[1].ID, 1}, // Touch up x1
	}
	for _, item := range job1Items {
		if _, err := billing.AddLineItem(tenant.ID, job1.ID, item.itemType, item.itemID, item.qty); err != nil {
			return fmt.Errorf("failed to add line item to demo job 1: %w", err)
		}
	}
	if _, err := billing.MarkCompleted(tenant.ID, job1.ID); err != nil {
		return fmt.Errorf("failed to complete demo job 1: %w", err)
	}

	// Job #2: freshly scheduled, no line items yet (total stays null)
	job2 := models.Job{
		JobDate:       models.NewDate(2024, 2, 2),
		CustomerID:    customers[1].ID,
		Status:        models.JobStatusOpen,
		PaymentStatus: models.PaymentStatusUnpaid,
		TenantID:      tenant.ID,
	}
	if err := db.Create(&job2).Error; err != nil {
		return fmt.Errorf("failed to create demo job 2: %w", err)
	}

	log.Info().
		Uint("tenant_id", tenant.ID).
		Str("slug", tenant.Slug).
		Msg("Demo tenant seeded")
	return nil
}

package testutil

import (
	"os"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/torquehub/torquehub-api/config"
	"github.com/torquehub/torquehub-api/models"
	"github.com/torquehub/torquehub-api/services"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV to test and fails if it cannot be set.
// Use this in TestMain or suite setup functions.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}

	if os.Getenv("GO_ENV") != "test" {
		t.Fatal("Failed to verify GO_ENV=test")
	}
}

// SetupTestDB creates an in-memory database with all models migrated and
// wires it into the config singleton together with a billing service
func SetupTestDB(t *testing.T, gracePeriodDays int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	services.SetBillingService(services.NewBillingService(db, gracePeriodDays))
	return db
}

// CreateTenant creates an active tenant with the given slug
func CreateTenant(t *testing.T, db *gorm.DB, name, slug string) models.Tenant {
	t.Helper()

	tenant := models.Tenant{Name: name, Slug: slug, Active: true}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("Failed to create tenant %q: %v", slug, err)
	}
	return tenant
}

// CreateUser creates a staff user inside the given tenant
func CreateUser(t *testing.T, db *gorm.DB, tenantID uint, auth0ID, name, email, role string) models.User {
	t.Helper()

	user := models.User{
		Auth0ID:  auth0ID,
		Name:     name,
		Email:    email,
		Role:     role,
		TenantID: tenantID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %q: %v", auth0ID, err)
	}
	return user
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/torquehub/torquehub-api/config"
	"github.com/torquehub/torquehub-api/models"
)

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	FirstName  *string `json:"first_name" binding:"omitempty"`
	FamilyName string  `json:"family_name" binding:"required"`
	Email      string  `json:"email" binding:"omitempty,email"`
	Phone      string  `json:"phone" binding:"omitempty"`
}

// CreateCustomer handles POST /api/v1/customers - creates a customer record (admins only)
func CreateCustomer(c *gin.Context) {
	user, tenantID, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	customer := models.Customer{
		FirstName:  req.FirstName,
		FamilyName: req.FamilyName,
		Email:      req.Email,
		Phone:      req.Phone,
		TenantID:   tenantID,
	}

	db := config.GetDB()
	if err := db.Create(&customer).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    customer,
	})
}

// ListCustomers handles GET /api/v1/customers - lists the tenant's customers
func ListCustomers(c *gin.Context) {
	_, tenantID, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var customers []models.Customer
	if err := db.Where("tenant_id = ?", tenantID).Order("family_name ASC").Find(&customers).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    customers,
	})
}

// GetCustomer handles GET /api/v1/customers/:id - fetches one customer
func GetCustomer(c *gin.Context) {
	_, tenantID, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var customer models.Customer
	if err := db.Where("tenant_id = ?", tenantID).First(&customer, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    customer,
	})
}

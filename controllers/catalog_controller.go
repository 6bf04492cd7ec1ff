package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/torquehub/torquehub-api/config"
	"github.com/torquehub/torquehub-api/models"
)

// CatalogEntryRequest represents the request body for creating or updating
// a catalog service or part. Cost is a decimal string ("43.21"), never a
// float, so amounts survive the JSON boundary exactly.
type CatalogEntryRequest struct {
	Name string `json:"name" binding:"required"`
	Cost string `json:"cost" binding:"required"`
}

// parseCost validates and parses a catalog cost string
func parseCost(c *gin.Context, raw string) (decimal.Decimal, bool) {
	cost, err := decimal.NewFromString(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Cost must be a decimal string, e.g. \"43.21\"")
		return decimal.Zero, false
	}
	if cost.IsNegative() {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Cost must not be negative")
		return decimal.Zero, false
	}
	return cost.Round(2), true
}

// CreateService handles POST /api/v1/services - adds a catalog service (admins only)
func CreateService(c *gin.Context) {
	user, tenantID, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	var req CatalogEntryRequest
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

	cost, ok := parseCost(c, req.Cost)
	if !ok {
		return
	}

	service := models.Service{
		Name:     req.Name,
		Cost:     cost,
		TenantID: tenantID,
	}

	db := config.GetDB()
	if err := db.Create(&service).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    service,
	})
}

// ListServices handles GET /api/v1/services - lists the tenant's service catalog
func ListServices(c *gin.Context) {
	_, tenantID, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var servicesList []models.Service
	if err := db.Where("tenant_id = ?", tenantID).Order("name ASC").Find(&servicesList).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list services")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    servicesList,
	})
}

// UpdateService handles PUT /api/v1/services/:id - updates a catalog service (admins only).
// Changing a cost affects future total recomputations of any job that
// references the service; already stored totals are not rewritten.
func UpdateService(c *gin.Context) {
	user, tenantID, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	db := config.GetDB()
	var service models.Service
	if err := db.Where("tenant_id = ?", tenantID).First(&service, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "SERVICE_NOT_FOUND", "Service not found")
		return
	}

	var req CatalogEntryRequest
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

	cost, ok := parseCost(c, req.Cost)
	if !ok {
		return
	}

	if err := db.Model(&service).Updates(map[string]interface{}{
		"name": req.Name,
		"cost": cost,
	}).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service,
	})
}

// CreatePart handles POST /api/v1/parts - adds a catalog part (admins only)
func CreatePart(c *gin.Context) {
	user, tenantID, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	var req CatalogEntryRequest
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

	cost, ok := parseCost(c, req.Cost)
	if !ok {
		return
	}

	part := models.Part{
		Name:     req.Name,
		Cost:     cost,
		TenantID: tenantID,
	}

	db := config.GetDB()
	if err := db.Create(&part).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create part")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    part,
	})
}

// ListParts handles GET /api/v1/parts - lists the tenant's part catalog
func ListParts(c *gin.Context) {
	_, tenantID, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var parts []models.Part
	if err := db.Where("tenant_id = ?", tenantID).Order("name ASC").Find(&parts).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list parts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    parts,
	})
}

// UpdatePart handles PUT /api/v1/parts/:id - updates a catalog part (admins only)
func UpdatePart(c *gin.Context) {
	user, tenantID, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	db := config.GetDB()
	var part models.Part
	if err := db.Where("tenant_id = ?", tenantID).First(&part, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "PART_NOT_FOUND", "Part not found")
		return
	}

	var req CatalogEntryRequest
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

	cost, ok := parseCost(c, req.Cost)
	if !ok {
		return
	}

	if err := db.Model(&part).Updates(map[string]interface{}{
		"name": req.Name,
		"cost": cost,
	}).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update part")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    part,
	})
}

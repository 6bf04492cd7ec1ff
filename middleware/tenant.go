package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/torquehub/torquehub-api/config"
	"github.com/torquehub/torquehub-api/models"
)

// TenantHeader is the request header carrying the tenant slug
const TenantHeader = "X-Tenant"

const tenantContextKey = "tenant_id"

// ResolveTenant resolves the active tenant for the request from the X-Tenant
// header (falling back to a ?tenant= query parameter) and stores its ID in
// the Gin context. Every handler behind this middleware must scope its
// queries with GetTenantID: the tenant filter is a security boundary, not an
// optimization.
func ResolveTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.GetHeader(TenantHeader)
		if slug == "" {
			slug = c.Query("tenant")
		}
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_TENANT",
					"message": "Tenant slug is required (X-Tenant header)",
				},
			})
			c.Abort()
			return
		}

		db := config.GetDB()
		var tenant models.Tenant
		if err := db.Where("slug = ? AND active = ?", slug, true).First(&tenant).Error; err != nil {
			log.Warn().Str("tenant_slug", slug).Msg("Unknown or inactive tenant")
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TENANT_NOT_FOUND",
					"message": "Tenant not found or inactive",
				},
			})
			c.Abort()
			return
		}

		c.Set(tenantContextKey, tenant.ID)
		c.Set("tenant_slug", tenant.Slug)
		c.Next()
	}
}

// GetTenantID extracts the resolved tenant ID from the Gin context
func GetTenantID(c *gin.Context) (uint, error) {
	value, exists := c.Get(tenantContextKey)
	if !exists {
		return 0, &AuthError{Code: "MISSING_TENANT", Message: "Tenant not resolved for this request"}
	}

	tenantID, ok := value.(uint)
	if !ok {
		return 0, &AuthError{Code: "INVALID_TENANT", Message: "Tenant ID is not valid"}
	}

	return tenantID, nil
}

// SetTenantID stores a tenant ID in the Gin context (primarily for testing)
func SetTenantID(c *gin.Context, tenantID uint) {
	c.Set(tenantContextKey, tenantID)
}

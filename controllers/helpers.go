package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/torquehub/torquehub-api/config"
	"github.com/torquehub/torquehub-api/middleware"
	"github.com/torquehub/torquehub-api/models"
	"github.com/torquehub/torquehub-api/services"
)

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps billing service sentinel errors to HTTP responses
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrValidation):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, services.ErrInvalidState):
		respondError(c, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, services.ErrConflict):
		respondError(c, http.StatusConflict, "CONFLICT", err.Error())
	default:
		log.Error().Err(err).Msg("Unexpected service error")
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "An unexpected error occurred")
	}
}

// currentUser resolves the authenticated user within the resolved tenant.
// It writes the error response and returns ok=false when resolution fails.
// Because the lookup is scoped by tenant_id, a valid token for a user of
// another tenant yields USER_NOT_FOUND rather than cross-tenant access.
func currentUser(c *gin.Context) (*models.User, uint, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, 0, false
	}

	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_TENANT", "Tenant not resolved for this request")
		return nil, 0, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ? AND tenant_id = ?", auth0ID, tenantID).First(&user).Error; err != nil {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
		return nil, 0, false
	}

	return &user, tenantID, true
}

// requireAdmin checks the administrator role, writing FORBIDDEN otherwise
func requireAdmin(c *gin.Context, user *models.User) bool {
	if !user.IsAdmin() {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Only administrators can perform this action")
		return false
	}
	return true
}

package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/torquehub/torquehub-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer, role string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
			Role:  role,
		},
	}
}

// MockAuthMiddleware simulates the JWT middleware: it stores the user ID and
// validated claims in the Gin context without any token verification.
// Combine it with the real ResolveTenant middleware, or with MockTenant.
func MockAuthMiddleware(auth0ID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("validated_claims", MockValidatedClaims(auth0ID, "https://test.auth0.com/", role, nil))
		c.Next()
	}
}

// MockTenant stores a tenant ID in the context, bypassing slug resolution
func MockTenant(tenantID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetTenantID(c, tenantID)
		c.Next()
	}
}

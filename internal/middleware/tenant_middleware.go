package middleware

import (
	"net/http"

	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantHeader carries the tenant id alongside the path parameter. The
// guard compares the two so a caller cannot lie in one channel.
const TenantHeader = "X-Tenant-ID"

// TenantGuard is the single chokepoint for tenant access. It resolves the
// tenant id from the path and the header, rejects mismatches, verifies the
// caller's membership with one uncached point lookup, and binds the tenant
// id into the context for downstream handlers.
func TenantGuard(memberships repository.MembershipRepositoryInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(UserIDKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}
		userID, ok := value.(uuid.UUID)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
			c.Abort()
			return
		}

		pathTenant := c.Param("id")
		headerTenant := c.GetHeader(TenantHeader)

		if pathTenant == "" && headerTenant == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tenant ID is required"})
			c.Abort()
			return
		}
		if pathTenant != "" && headerTenant != "" && pathTenant != headerTenant {
			c.JSON(http.StatusForbidden, gin.H{"error": "Tenant mismatch"})
			c.Abort()
			return
		}

		resolved := pathTenant
		if resolved == "" {
			resolved = headerTenant
		}
		tenantID, err := uuid.Parse(resolved)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID format"})
			c.Abort()
			return
		}

		membership, err := memberships.Get(c.Request.Context(), userID, tenantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify tenant access"})
			c.Abort()
			return
		}
		if membership == nil {
			// Same generic answer whether the tenant exists or not.
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

package handler

import (
	"errors"
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Messages stay generic: a missing resource and a foreign-tenant resource
// answer identically.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	case errors.Is(err, service.ErrTenantAccessDenied), errors.Is(err, service.ErrTenantMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// principal pulls the ids the middleware chain bound into the context.
func principal(c *gin.Context) (userID, tenantID uuid.UUID, ok bool) {
	userValue, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}
	userID, castOK := userValue.(uuid.UUID)
	if !castOK {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, uuid.Nil, false
	}

	tenantValue, exists := c.Get(middleware.TenantIDKey)
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return uuid.Nil, uuid.Nil, false
	}
	tenantID, castOK = tenantValue.(uuid.UUID)
	if !castOK {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid tenant ID format"})
		return uuid.Nil, uuid.Nil, false
	}

	return userID, tenantID, true
}

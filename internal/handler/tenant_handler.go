package handler

import (
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TenantHandler struct {
	tenants     repository.TenantRepositoryInterface
	users       repository.UserRepositoryInterface
	memberships repository.MembershipRepositoryInterface
}

func NewTenantHandler(
	tenants repository.TenantRepositoryInterface,
	users repository.UserRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
) *TenantHandler {
	return &TenantHandler{
		tenants:     tenants,
		users:       users,
		memberships: memberships,
	}
}

type TenantResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type MemberResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// List returns the tenants the authenticated user belongs to. No tenant
// guard here: the membership join itself is the scoping.
func (h *TenantHandler) List(c *gin.Context) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	tenants, err := h.memberships.ListTenants(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tenants"})
		return
	}

	response := make([]TenantResponse, len(tenants))
	for i, tenant := range tenants {
		response[i] = TenantResponse{ID: tenant.ID.String(), Name: tenant.Name}
	}
	c.JSON(http.StatusOK, response)
}

// AddMember invites an existing user into the tenant by email.
func (h *TenantHandler) AddMember(c *gin.Context) {
	_, tenantID, ok := principal(c)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	target, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.memberships.Add(c.Request.Context(), tenantID, target.ID, model.RoleMember); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member added successfully"})
}

// RemoveMember revokes a user's membership. Their live connections keep
// receiving events until they disconnect; the next guarded request fails.
func (h *TenantHandler) RemoveMember(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	if targetID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot remove yourself"})
		return
	}

	if err := h.memberships.Remove(c.Request.Context(), tenantID, targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// ListMembers returns the tenant's members.
func (h *TenantHandler) ListMembers(c *gin.Context) {
	_, tenantID, ok := principal(c)
	if !ok {
		return
	}

	memberships, err := h.memberships.ListMembers(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	response := make([]MemberResponse, len(memberships))
	for i, membership := range memberships {
		response[i] = MemberResponse{
			UserID: membership.UserID.String(),
			Email:  membership.User.Email,
			Name:   membership.User.Name,
			Role:   membership.Role,
		}
	}
	c.JSON(http.StatusOK, response)
}

// Delete removes the whole tenant. Only the owner may do this; boards,
// todos and memberships cascade in the schema.
func (h *TenantHandler) Delete(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	membership, err := h.memberships.Get(c.Request.Context(), userID, tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify tenant access"})
		return
	}
	if membership == nil || membership.Role != model.RoleOwner {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the tenant owner can delete the tenant"})
		return
	}

	if err := h.tenants.Delete(c.Request.Context(), tenantID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tenant"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tenant deleted successfully"})
}

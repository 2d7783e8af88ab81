package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/middleware"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Get(ctx context.Context, userID, tenantID uuid.UUID) (*model.Membership, error) {
	args := m.Called(ctx, userID, tenantID)
	membership := args.Get(0)
	if membership == nil {
		return nil, args.Error(1)
	}
	return membership.(*model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) Add(ctx context.Context, tenantID, userID uuid.UUID, role string) error {
	args := m.Called(ctx, tenantID, userID, role)
	return args.Error(0)
}

func (m *MockMembershipRepository) Remove(ctx context.Context, tenantID, userID uuid.UUID) error {
	args := m.Called(ctx, tenantID, userID)
	return args.Error(0)
}

func (m *MockMembershipRepository) ListTenants(ctx context.Context, userID uuid.UUID) ([]model.Tenant, error) {
	args := m.Called(ctx, userID)
	tenants := args.Get(0)
	if tenants == nil {
		return nil, args.Error(1)
	}
	return tenants.([]model.Tenant), args.Error(1)
}

func (m *MockMembershipRepository) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]model.Membership, error) {
	args := m.Called(ctx, tenantID)
	memberships := args.Get(0)
	if memberships == nil {
		return nil, args.Error(1)
	}
	return memberships.([]model.Membership), args.Error(1)
}

func setupGuardRouter(userID uuid.UUID, repo *MockMembershipRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()

	scoped := r.Group("/tenants/:id")
	scoped.Use(func(c *gin.Context) {
		// Stands in for the JWT middleware.
		c.Set(middleware.UserIDKey, userID)
	})
	scoped.Use(middleware.TenantGuard(repo))

	scoped.GET("/boards", func(c *gin.Context) {
		tenantID, exists := c.Get(middleware.TenantIDKey)
		if !exists {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Tenant ID not found in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenant_id": tenantID})
	})

	return r
}

func TestTenantGuard_Member(t *testing.T) {
	// Arrange
	userID := uuid.New()
	tenantID := uuid.New()
	mockRepo := new(MockMembershipRepository)
	mockRepo.On("Get", mock.Anything, userID, tenantID).
		Return(&model.Membership{UserID: userID, TenantID: tenantID, Role: model.RoleMember}, nil)

	router := setupGuardRouter(userID, mockRepo)
	req, _ := http.NewRequest("GET", "/tenants/"+tenantID.String()+"/boards", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), tenantID.String())
	mockRepo.AssertExpectations(t)
}

func TestTenantGuard_NotAMember(t *testing.T) {
	// Arrange
	userID := uuid.New()
	tenantID := uuid.New()
	mockRepo := new(MockMembershipRepository)
	mockRepo.On("Get", mock.Anything, userID, tenantID).Return(nil, nil)

	router := setupGuardRouter(userID, mockRepo)
	req, _ := http.NewRequest("GET", "/tenants/"+tenantID.String()+"/boards", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "Access denied")
	mockRepo.AssertExpectations(t)
}

func TestTenantGuard_HeaderMismatch(t *testing.T) {
	// Arrange: path and header disagree, membership must never be consulted
	userID := uuid.New()
	pathTenant := uuid.New()
	headerTenant := uuid.New()
	mockRepo := new(MockMembershipRepository)

	router := setupGuardRouter(userID, mockRepo)
	req, _ := http.NewRequest("GET", "/tenants/"+pathTenant.String()+"/boards", nil)
	req.Header.Set(middleware.TenantHeader, headerTenant.String())

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "Tenant mismatch")
	mockRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestTenantGuard_MatchingHeader(t *testing.T) {
	// Arrange: header agrees with the path, access proceeds
	userID := uuid.New()
	tenantID := uuid.New()
	mockRepo := new(MockMembershipRepository)
	mockRepo.On("Get", mock.Anything, userID, tenantID).
		Return(&model.Membership{UserID: userID, TenantID: tenantID, Role: model.RoleOwner}, nil)

	router := setupGuardRouter(userID, mockRepo)
	req, _ := http.NewRequest("GET", "/tenants/"+tenantID.String()+"/boards", nil)
	req.Header.Set(middleware.TenantHeader, tenantID.String())

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	mockRepo.AssertExpectations(t)
}

func TestTenantGuard_InvalidTenantID(t *testing.T) {
	// Arrange
	userID := uuid.New()
	mockRepo := new(MockMembershipRepository)

	router := setupGuardRouter(userID, mockRepo)
	req, _ := http.NewRequest("GET", "/tenants/not-a-uuid/boards", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid tenant ID format")
}

func TestTenantGuard_NotAuthenticated(t *testing.T) {
	// Arrange: no user bound in context at all
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	mockRepo := new(MockMembershipRepository)

	scoped := r.Group("/tenants/:id")
	scoped.Use(middleware.TenantGuard(mockRepo))
	scoped.GET("/boards", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "reached"})
	})

	req, _ := http.NewRequest("GET", "/tenants/"+uuid.New().String()+"/boards", nil)

	// Act
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Not authenticated")
}

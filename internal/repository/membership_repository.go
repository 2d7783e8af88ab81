package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

type MembershipRepositoryInterface interface {
	Get(ctx context.Context, userID, tenantID uuid.UUID) (*model.Membership, error)
	Add(ctx context.Context, tenantID, userID uuid.UUID, role string) error
	Remove(ctx context.Context, tenantID, userID uuid.UUID) error
	ListTenants(ctx context.Context, userID uuid.UUID) ([]model.Tenant, error)
	ListMembers(ctx context.Context, tenantID uuid.UUID) ([]model.Membership, error)
}

var _ MembershipRepositoryInterface = (*MembershipRepository)(nil)

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Get returns the membership row for (user, tenant), or nil if the user is
// not a member. This is the point lookup behind every authorization check,
// so it is deliberately uncached: removing a member takes effect immediately.
func (r *MembershipRepository) Get(ctx context.Context, userID, tenantID uuid.UUID) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		First(&membership).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// Add grants a user access to a tenant. If a membership already exists the
// role is updated instead of creating a duplicate pair.
func (r *MembershipRepository) Add(ctx context.Context, tenantID, userID uuid.UUID, role string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Membership
		err := tx.Where("user_id = ? AND tenant_id = ?", userID, tenantID).First(&existing).Error

		if err == nil {
			existing.Role = role
			return tx.Save(&existing).Error
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		membership := model.Membership{
			UserID:   userID,
			TenantID: tenantID,
			Role:     role,
		}
		return tx.Create(&membership).Error
	})
}

func (r *MembershipRepository) Remove(ctx context.Context, tenantID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		Delete(&model.Membership{}).Error
}

// ListTenants returns the tenants the user belongs to.
func (r *MembershipRepository) ListTenants(ctx context.Context, userID uuid.UUID) ([]model.Tenant, error) {
	var tenants []model.Tenant
	err := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.tenant_id = tenants.id").
		Where("memberships.user_id = ?", userID).
		Find(&tenants).Error
	return tenants, err
}

// ListMembers returns the memberships of a tenant with users preloaded.
func (r *MembershipRepository) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]model.Membership, error) {
	var memberships []model.Membership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("tenant_id = ?", tenantID).
		Find(&memberships).Error
	return memberships, err
}

package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

type TenantRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ TenantRepositoryInterface = (*TenantRepository)(nil)

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// Delete removes the tenant row. Boards, todos and memberships go with it
// through the ON DELETE CASCADE constraints in the schema.
func (r *TenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Tenant{}, "id = ?", id).Error
}

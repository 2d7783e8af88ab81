package model

import (
	"time"

	"github.com/google/uuid"
)

// Membership links a user to a tenant. The (user, tenant) pair is the
// composite identity; there is at most one row per pair.
type Membership struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Role      string    `gorm:"not null;check:role IN ('owner', 'member')"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	User   User   `gorm:"foreignKey:UserID"`
	Tenant Tenant `gorm:"foreignKey:TenantID"`
}

// Membership roles
const (
	RoleOwner  = "owner"  // created the tenant, may delete it and manage members
	RoleMember = "member" // full access to the tenant's boards and todos
)

package model

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated workspace. Every board and todo row carries the
// id of its owning tenant; deleting a tenant cascades to all of them.
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

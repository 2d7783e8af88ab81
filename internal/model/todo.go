package model

import (
	"time"

	"github.com/google/uuid"
)

type Todo struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BoardID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description string
	Status      string     `gorm:"not null;default:'TODO';check:status IN ('TODO', 'IN_PROGRESS', 'DONE')"`
	AssigneeID  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Tenant Tenant `gorm:"foreignKey:TenantID"`
	Board  Board  `gorm:"foreignKey:BoardID"`
}

// Todo statuses
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category and Service form the admin-managed catalog. A provider profile
// references both by id; names are resolved server-side so clients never
// recompute them.

type Category struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name     string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	IsActive bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Services []Service `gorm:"foreignKey:CategoryID" json:"services,omitempty"`
}

type Service struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CategoryID uuid.UUID `gorm:"type:uuid;index;not null" json:"category_id"`
	Name       string    `gorm:"type:varchar(120);not null" json:"name"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

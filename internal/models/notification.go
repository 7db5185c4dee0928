package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	Title string `gorm:"type:varchar(200);not null" json:"title"`
	Body  string `gorm:"type:text" json:"body"`
	Read  bool   `gorm:"default:false;index" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	Position    int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

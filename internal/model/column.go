package model

import (
	"github.com/google/uuid"
)

type Column struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Title    string    `gorm:"not null"`
	Position int       `gorm:"not null"`
	Color    string

	Event Event `gorm:"foreignKey:EventID"`
}

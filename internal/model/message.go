package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ChatID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null"`
	Body      string     `gorm:"type:text;not null"`
	Timestamp time.Time  `gorm:"not null;autoCreateTime"`
	ReplyTo   *uuid.UUID `gorm:"type:uuid"`

	Chat Chat `gorm:"foreignKey:ChatID"`
	User User `gorm:"foreignKey:UserID"`
}

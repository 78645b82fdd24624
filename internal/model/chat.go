package model

import (
	"time"

	"github.com/google/uuid"
)

// Chat представляет личный или групповой чат между пользователями
type Chat struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Type            string    `gorm:"not null;check:type IN ('personal', 'group')"`
	Name            string
	CreatedBy       uuid.UUID `gorm:"type:uuid;not null"`
	LastMessage     string
	LastMessageTime *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`

	Creator      User   `gorm:"foreignKey:CreatedBy"`
	Participants []User `gorm:"many2many:chat_participants"`
}

// Типы чатов
const (
	ChatTypePersonal = "personal" // ровно два участника
	ChatTypeGroup    = "group"    // именованная группа
)

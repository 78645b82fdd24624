package model

import (
	"time"

	"github.com/google/uuid"
)

// Приоритеты задач
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Статусы задач (сохранены для обратной совместимости с клиентом)
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ColumnID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description string
	Priority    string     `gorm:"not null;default:medium;check:priority IN ('low', 'medium', 'high')"`
	Status      string     `gorm:"check:status IN ('todo', 'in-progress', 'done')"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	DueDate     *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	Event    Event  `gorm:"foreignKey:EventID"`
	Column   Column `gorm:"foreignKey:ColumnID"`
	Assignee User   `gorm:"foreignKey:AssignedTo"`
	Creator  User   `gorm:"foreignKey:CreatedBy"`
}

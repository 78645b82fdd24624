package repository

import (
	"context"
	"errors"

	"teamhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) GetAll(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).Order("position").Find(&events).Error
	return events, err
}

func (r *EventRepository) Update(ctx context.Context, event *model.Event) error {
	result := r.db.WithContext(ctx).Save(event)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes an event together with its columns and tasks.
// Cascade is intentional: the column-level guard only protects direct
// column deletion, not teardown of a whole event.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event model.Event
		if err := tx.First(&event, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if err := tx.Where("event_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&model.Column{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
}

func (r *EventRepository) GetMaxPosition(ctx context.Context) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.Event{}).
		Select("COALESCE(MAX(position), 0) as max").
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

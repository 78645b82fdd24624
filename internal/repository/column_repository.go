package repository

import (
	"context"
	"errors"

	"teamhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ColumnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

func (r *ColumnRepository) Create(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *ColumnRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error) {
	var column model.Column
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &column, nil
}

func (r *ColumnRepository) GetAll(ctx context.Context) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).Order("position").Find(&columns).Error
	return columns, err
}

func (r *ColumnRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("position").Find(&columns).Error
	return columns, err
}

func (r *ColumnRepository) Update(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Save(column).Error
}

// Delete removes a column. A column that still has tasks cannot be deleted;
// the check and the delete run in one transaction.
func (r *ColumnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Task{}).Where("column_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrColumnNotEmpty
		}
		return tx.Delete(&model.Column{}, "id = ?", id).Error
	})
}

func (r *ColumnRepository) GetMaxPosition(ctx context.Context, eventID uuid.UUID) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.Column{}).
		Select("COALESCE(MAX(position), 0) as max").
		Where("event_id = ?", eventID).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

func (r *ColumnRepository) ReorderColumns(ctx context.Context, columns []model.Column) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, column := range columns {
			if err := tx.Model(&model.Column{}).Where("id = ?", column.ID).
				Update("position", column.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

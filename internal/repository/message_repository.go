package repository

import (
	"context"
	"errors"

	"teamhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ChatMessage, error) {
	var message model.ChatMessage
	err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// GetByChatID retrieves all messages in a chat in chronological order
func (r *MessageRepository) GetByChatID(ctx context.Context, chatID uuid.UUID) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("timestamp").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Delete removes a message. Replies that pointed at it keep their reply_to
// reference; readers resolve the gap as a tombstone.
func (r *MessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.ChatMessage{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

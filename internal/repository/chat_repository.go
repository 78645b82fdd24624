package repository

import (
	"context"
	"errors"
	"time"

	"teamhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, chat *model.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *ChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).Preload("Participants").First(&chat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// GetByParticipant retrieves all chats the given user participates in,
// most recently active first.
func (r *ChatRepository) GetByParticipant(ctx context.Context, userID uuid.UUID) ([]model.Chat, error) {
	var chats []model.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id").
		Where("cp.user_id = ?", userID).
		Order("chats.last_message_time DESC NULLS LAST, chats.created_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

// FindPersonalByPair looks up an existing personal chat whose participant set
// is exactly {a, b}, regardless of order.
func (r *ChatRepository) FindPersonalByPair(ctx context.Context, a, b uuid.UUID) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where(`chats.type = ?
			AND EXISTS (SELECT 1 FROM chat_participants WHERE chat_id = chats.id AND user_id = ?)
			AND EXISTS (SELECT 1 FROM chat_participants WHERE chat_id = chats.id AND user_id = ?)`,
			model.ChatTypePersonal, a, b).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

// UpdateLastMessage refreshes the denormalized preview fields
func (r *ChatRepository) UpdateLastMessage(ctx context.Context, chatID uuid.UUID, body string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"last_message":      body,
			"last_message_time": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

// IsParticipant reports whether the user belongs to the chat
func (r *ChatRepository) IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("chat_participants").
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"teamhub/internal/middleware"
	"teamhub/internal/model"
	"teamhub/internal/realtime"
	"teamhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	chatRepo    *repository.ChatRepository
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	hub         *realtime.Hub
}

func NewChatHandler(
	chatRepo *repository.ChatRepository,
	messageRepo *repository.MessageRepository,
	userRepo *repository.UserRepository,
	hub *realtime.Hub,
) *ChatHandler {
	return &ChatHandler{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		hub:         hub,
	}
}

// ChatRequest представляет запрос на создание чата
type ChatRequest struct {
	Type           string   `json:"type" binding:"required"`
	Name           string   `json:"name"`
	ParticipantIDs []string `json:"participant_ids" binding:"required"`
}

// ChatResponse представляет ответ с данными чата
type ChatResponse struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Name            string   `json:"name,omitempty"`
	CreatedBy       string   `json:"created_by"`
	ParticipantIDs  []string `json:"participant_ids"`
	LastMessage     string   `json:"last_message,omitempty"`
	LastMessageTime *string  `json:"last_message_time,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

// MessageRequest представляет запрос на отправку сообщения
type MessageRequest struct {
	Text    string  `json:"text" binding:"required"`
	ReplyTo *string `json:"reply_to"`
}

// MessageResponse представляет ответ с данными сообщения
type MessageResponse struct {
	ID        string  `json:"id"`
	ChatID    string  `json:"chat_id"`
	UserID    string  `json:"user_id"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
	ReplyTo   *string `json:"reply_to,omitempty"`
}

func toChatResponse(chat *model.Chat) ChatResponse {
	participantIDs := make([]string, len(chat.Participants))
	for i, p := range chat.Participants {
		participantIDs[i] = p.ID.String()
	}

	response := ChatResponse{
		ID:             chat.ID.String(),
		Type:           chat.Type,
		Name:           chat.Name,
		CreatedBy:      chat.CreatedBy.String(),
		ParticipantIDs: participantIDs,
		LastMessage:    chat.LastMessage,
		CreatedAt:      chat.CreatedAt.Format(time.RFC3339),
	}
	if chat.LastMessageTime != nil {
		t := chat.LastMessageTime.Format(time.RFC3339)
		response.LastMessageTime = &t
	}
	return response
}

func toMessageResponse(message *model.ChatMessage) MessageResponse {
	response := MessageResponse{
		ID:        message.ID.String(),
		ChatID:    message.ChatID.String(),
		UserID:    message.UserID.String(),
		Text:      message.Body,
		Timestamp: message.Timestamp.Format(time.RFC3339),
	}
	if message.ReplyTo != nil {
		replyTo := message.ReplyTo.String()
		response.ReplyTo = &replyTo
	}
	return response
}

// GetAll возвращает чаты текущего пользователя
func (h *ChatHandler) GetAll(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	authenticatedUserID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	chats, err := h.chatRepo.GetByParticipant(c.Request.Context(), authenticatedUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve chats"})
		return
	}

	response := make([]ChatResponse, len(chats))
	for i := range chats {
		response[i] = toChatResponse(&chats[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByID возвращает один чат; доступен только его участникам
func (h *ChatHandler) GetByID(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID format"})
		return
	}

	chat, err := h.chatRepo.GetByID(c.Request.Context(), chatID)
	if err != nil {
		if err == repository.ErrChatNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve chat"})
		}
		return
	}

	if !containsParticipant(chat, authenticatedUserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a participant of this chat"})
		return
	}

	c.JSON(http.StatusOK, toChatResponse(chat))
}

// Create создает чат. Личный чат с той же парой участников не дублируется:
// возвращается уже существующий.
func (h *ChatHandler) Create(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Type != model.ChatTypePersonal && req.Type != model.ChatTypeGroup {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat type must be personal or group"})
		return
	}

	// Собираем множество участников: {создатель} ∪ указанные
	participantSet := map[uuid.UUID]struct{}{authenticatedUserID: {}}
	for _, raw := range req.ParticipantIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid participant ID format"})
			return
		}
		participantSet[id] = struct{}{}
	}

	if req.Type == model.ChatTypePersonal {
		if len(participantSet) != 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Personal chat must have exactly two participants"})
			return
		}

		var other uuid.UUID
		for id := range participantSet {
			if id != authenticatedUserID {
				other = id
			}
		}

		// Дедупликация по неупорядоченной паре участников
		existing, err := h.chatRepo.FindPersonalByPair(c.Request.Context(), authenticatedUserID, other)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing chats"})
			return
		}
		if existing != nil {
			c.JSON(http.StatusOK, toChatResponse(existing))
			return
		}
	} else {
		if strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Group chat name is required"})
			return
		}
		if len(participantSet) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Group chat requires at least one other participant"})
			return
		}
	}

	// Проверяем, что все участники существуют
	participants := make([]model.User, 0, len(participantSet))
	for id := range participantSet {
		user, err := h.userRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		participants = append(participants, *user)
	}

	chat := &model.Chat{
		Type:         req.Type,
		Name:         req.Name,
		CreatedBy:    authenticatedUserID,
		Participants: participants,
	}

	if err := h.chatRepo.Create(c.Request.Context(), chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create chat"})
		return
	}

	h.hub.Publish(
		realtime.Change{Entity: "chat", Action: realtime.ActionCreated, ID: chat.ID},
		participantUUIDs(chat),
	)
	c.JSON(http.StatusCreated, toChatResponse(chat))
}

// GetMessages возвращает сообщения чата в хронологическом порядке
func (h *ChatHandler) GetMessages(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID format"})
		return
	}

	isParticipant, err := h.chatRepo.IsParticipant(c.Request.Context(), chatID, authenticatedUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check chat access"})
		return
	}
	if !isParticipant {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a participant of this chat"})
		return
	}

	messages, err := h.messageRepo.GetByChatID(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}

	response := make([]MessageResponse, len(messages))
	for i := range messages {
		response[i] = toMessageResponse(&messages[i])
	}

	c.JSON(http.StatusOK, response)
}

// CreateMessage отправляет сообщение в чат
func (h *ChatHandler) CreateMessage(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID format"})
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message text cannot be empty"})
		return
	}

	chat, err := h.chatRepo.GetByID(c.Request.Context(), chatID)
	if err != nil {
		if err == repository.ErrChatNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve chat"})
		}
		return
	}

	if !containsParticipant(chat, authenticatedUserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a participant of this chat"})
		return
	}

	message := &model.ChatMessage{
		ChatID:    chatID,
		UserID:    authenticatedUserID,
		Body:      text,
		Timestamp: time.Now().UTC(),
	}

	// Ответ должен ссылаться на сообщение в том же чате
	if req.ReplyTo != nil {
		replyToID, err := uuid.Parse(*req.ReplyTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID format"})
			return
		}
		replyTo, err := h.messageRepo.GetByID(c.Request.Context(), replyToID)
		if err != nil {
			if err == repository.ErrMessageNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve message"})
			}
			return
		}
		if replyTo.ChatID != chatID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found in chat"})
			return
		}
		message.ReplyTo = &replyToID
	}

	if err := h.messageRepo.Create(c.Request.Context(), message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	// Превью последнего сообщения обновляется по возможности:
	// само сообщение уже сохранено, отказывать из-за превью нельзя
	_ = h.chatRepo.UpdateLastMessage(c.Request.Context(), chatID, text, message.Timestamp)

	h.hub.Publish(
		realtime.Change{Entity: "message", Action: realtime.ActionCreated, ID: message.ID, ChatID: &chatID},
		participantUUIDs(chat),
	)
	c.JSON(http.StatusCreated, toMessageResponse(message))
}

// DeleteMessage удаляет сообщение. Ответы на него не каскадируются:
// клиент отображает недоступное сообщение заглушкой.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	authenticatedUserID, ok := currentUserID(c)
	if !ok {
		return
	}

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID format"})
		return
	}

	messageID, err := uuid.Parse(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID format"})
		return
	}

	chat, err := h.chatRepo.GetByID(c.Request.Context(), chatID)
	if err != nil {
		if err == repository.ErrChatNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve chat"})
		}
		return
	}

	message, err := h.messageRepo.GetByID(c.Request.Context(), messageID)
	if err != nil {
		if err == repository.ErrMessageNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve message"})
		}
		return
	}
	if message.ChatID != chatID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found in chat"})
		return
	}

	// Удалять можно только свои сообщения
	if message.UserID != authenticatedUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own messages"})
		return
	}

	if err := h.messageRepo.Delete(c.Request.Context(), messageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		return
	}

	h.hub.Publish(
		realtime.Change{Entity: "message", Action: realtime.ActionDeleted, ID: messageID, ChatID: &chatID},
		participantUUIDs(chat),
	)
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return id, true
}

func containsParticipant(chat *model.Chat, userID uuid.UUID) bool {
	for _, p := range chat.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

func participantUUIDs(chat *model.Chat) []uuid.UUID {
	ids := make([]uuid.UUID, len(chat.Participants))
	for i, p := range chat.Participants {
		ids[i] = p.ID
	}
	return ids
}

package client

import (
	"context"
	"strings"
	"sync"

	"teamhub/internal/logger"

	"go.uber.org/zap"
)

// TombstoneText подставляется вместо удаленного сообщения, на которое
// остались ответы.
const TombstoneText = "message unavailable"

// ChatStore владеет клиентским кэшем чатов и их сообщений
type ChatStore struct {
	client *Client
	auth   *AuthStore
	log    *logger.Logger

	mu       sync.RWMutex
	chats    map[string]Chat
	messages map[string][]Message // по id чата, в хронологическом порядке
}

func NewChatStore(client *Client, auth *AuthStore, log *logger.Logger) *ChatStore {
	return &ChatStore{
		client:   client,
		auth:     auth,
		log:      log,
		chats:    make(map[string]Chat),
		messages: make(map[string][]Message),
	}
}

// Refresh перечитывает список чатов текущего пользователя
func (s *ChatStore) Refresh(ctx context.Context) error {
	chats, err := s.client.ListChats(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.chats = make(map[string]Chat, len(chats))
	for _, chat := range chats {
		s.chats[chat.ID] = chat
	}
	s.mu.Unlock()
	return nil
}

func (s *ChatStore) Chats() []Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Chat, 0, len(s.chats))
	for _, chat := range s.chats {
		out = append(out, chat)
	}
	return out
}

func (s *ChatStore) Chat(id string) (Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[id]
	return chat, ok
}

// CreatePersonalChat возвращает личный чат с указанным пользователем.
// Сначала ищется существующий чат с той же парой участников, и только
// при его отсутствии создается новый. Сервер дедуплицирует повторно.
func (s *ChatStore) CreatePersonalChat(ctx context.Context, userID string) (*Chat, error) {
	self := s.auth.CurrentUser()
	if self == nil {
		return nil, &AuthError{Message: "not authenticated"}
	}
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Message: "user id is required"}
	}

	if existing := s.findPersonal(self.ID, userID); existing != nil {
		return existing, nil
	}

	chat, err := s.client.CreateChat(ctx, "personal", "", []string{userID})
	if err != nil {
		s.log.Error("create personal chat failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.chats[chat.ID] = *chat
	s.mu.Unlock()
	return chat, nil
}

// CreateGroupChat создает групповой чат {self} ∪ participantIDs
func (s *ChatStore) CreateGroupChat(ctx context.Context, name string, participantIDs []string) (*Chat, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Message: "group chat name is required"}
	}
	if len(participantIDs) == 0 {
		return nil, &ValidationError{Field: "participant_ids", Message: "at least one participant is required"}
	}

	chat, err := s.client.CreateChat(ctx, "group", name, participantIDs)
	if err != nil {
		s.log.Error("create group chat failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.chats[chat.ID] = *chat
	s.mu.Unlock()
	return chat, nil
}

// Messages возвращает сообщения чата, перечитывая их с сервера
func (s *ChatStore) Messages(ctx context.Context, chatID string) ([]Message, error) {
	messages, err := s.client.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.messages[chatID] = messages
	s.mu.Unlock()
	return messages, nil
}

// CachedMessages returns the last fetched messages without a remote call.
func (s *ChatStore) CachedMessages(chatID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages[chatID]))
	copy(out, s.messages[chatID])
	return out
}

// SendMessage отправляет сообщение и обновляет превью чата
func (s *ChatStore) SendMessage(ctx context.Context, chatID, text string, replyTo *string) (*Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &ValidationError{Field: "text", Message: "message text cannot be empty"}
	}
	if _, ok := s.Chat(chatID); !ok {
		return nil, &NotFoundError{Entity: "chat", ID: chatID}
	}

	message, err := s.client.SendMessage(ctx, chatID, trimmed, replyTo)
	if err != nil {
		s.log.Error("send message failed", zap.String("chat_id", chatID), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.messages[chatID] = append(s.messages[chatID], *message)
	if chat, ok := s.chats[chatID]; ok {
		chat.LastMessage = message.Text
		timestamp := message.Timestamp
		chat.LastMessageTime = &timestamp
		s.chats[chatID] = chat
	}
	s.mu.Unlock()
	return message, nil
}

// DeleteMessage удаляет сообщение. Ответы на него не трогаются:
// их reply_to разрешается заглушкой через ResolveReply.
func (s *ChatStore) DeleteMessage(ctx context.Context, chatID, messageID string) error {
	if err := s.client.DeleteMessage(ctx, chatID, messageID); err != nil {
		if _, ok := err.(*NotFoundError); !ok {
			s.log.Error("delete message failed", zap.String("message_id", messageID), zap.Error(err))
			return err
		}
	}

	s.mu.Lock()
	cached := s.messages[chatID]
	for i, message := range cached {
		if message.ID == messageID {
			s.messages[chatID] = append(cached[:i], cached[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// ResolveReply возвращает текст процитированного сообщения, либо
// заглушку, когда оно удалено.
func (s *ChatStore) ResolveReply(chatID string, replyTo *string) string {
	if replyTo == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, message := range s.messages[chatID] {
		if message.ID == *replyTo {
			return message.Text
		}
	}
	return TombstoneText
}

// findPersonal ищет в кэше личный чат с точной парой участников
func (s *ChatStore) findPersonal(selfID, otherID string) *Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chat := range s.chats {
		if chat.Type != "personal" || len(chat.ParticipantIDs) != 2 {
			continue
		}
		hasSelf, hasOther := false, false
		for _, id := range chat.ParticipantIDs {
			if id == selfID {
				hasSelf = true
			}
			if id == otherID {
				hasOther = true
			}
		}
		if hasSelf && hasOther {
			found := chat
			return &found
		}
	}
	return nil
}

package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"teamhub/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthStore_Initialize_NoPersistedSession(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no remote call expected without a session")
	}))
	defer server.Close()

	sessions := client.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	auth := client.NewAuthStore(client.New(server.URL), sessions, newTestLogger())

	require.Equal(t, client.StatusUninitialized, auth.Status())

	// Act
	auth.Initialize(context.Background())

	// Assert
	assert.Equal(t, client.StatusAnonymous, auth.Status())
	assert.Nil(t, auth.CurrentUser())
}

func TestAuthStore_Initialize_RestoresValidSession(t *testing.T) {
	// Arrange: сервер подтверждает сохраненный токен
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/me" && r.Header.Get("Authorization") == "Bearer saved-token" {
			writeJSON(w, client.User{ID: "user-1", Name: "Saved User", Email: "saved@example.com"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]string{"error": "Invalid or expired token"})
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	sessions := client.NewSessionStore(path)
	require.NoError(t, sessions.Save(&client.Session{
		Token: "saved-token",
		User:  client.User{ID: "user-1", Name: "Saved User"},
	}))

	auth := client.NewAuthStore(client.New(server.URL), sessions, newTestLogger())

	// Act
	auth.Initialize(context.Background())

	// Assert
	assert.Equal(t, client.StatusAuthenticated, auth.Status())
	user := auth.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "user-1", user.ID)
}

func TestAuthStore_Initialize_RejectedSessionDegradesToAnonymous(t *testing.T) {
	// Arrange: сервер отвергает сохраненный токен
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]string{"error": "Invalid or expired token"})
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	sessions := client.NewSessionStore(path)
	require.NoError(t, sessions.Save(&client.Session{Token: "stale-token"}))

	auth := client.NewAuthStore(client.New(server.URL), sessions, newTestLogger())

	// Act
	auth.Initialize(context.Background())

	// Assert: стор деградирует в anonymous, файл сессии очищен
	assert.Equal(t, client.StatusAnonymous, auth.Status())
	restored, err := sessions.Load()
	assert.NoError(t, err)
	assert.Nil(t, restored)
}

func TestAuthStore_Logout_FailOpen(t *testing.T) {
	// Arrange: удаленный выход падает
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			writeJSON(w, client.AuthResult{Token: "tok", User: client.User{ID: "user-1"}})
		case "/logout":
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, map[string]string{"error": "boom"})
		}
	}))
	defer server.Close()

	api := client.New(server.URL)
	sessions := client.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	auth := client.NewAuthStore(api, sessions, newTestLogger())
	require.NoError(t, auth.Login(context.Background(), "a@example.com", "password123"))
	require.Equal(t, client.StatusAuthenticated, auth.Status())

	// Act
	auth.Logout(context.Background())

	// Assert: локальное состояние очищено несмотря на ошибку сервера
	assert.Equal(t, client.StatusAnonymous, auth.Status())
	assert.Empty(t, api.Token())
	restored, err := sessions.Load()
	assert.NoError(t, err)
	assert.Nil(t, restored)
}

// Выход во время незавершенной отправки сообщения не должен оставить
// сессию аутентифицированной, чем бы ни закончилась отправка.
func TestAuthStore_LogoutDuringInFlightSend(t *testing.T) {
	// Arrange
	sendStarted := make(chan struct{})
	releaseSend := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			writeJSON(w, client.AuthResult{Token: "tok", User: client.User{ID: "user-self"}})
		case "/logout":
			writeJSON(w, map[string]string{"message": "Logged out"})
		case "/chats":
			writeJSON(w, []client.Chat{{ID: "chat-1", Type: "personal", ParticipantIDs: []string{"user-self", "user-2"}}})
		case "/chats/chat-1/messages":
			// Отправка зависает до явного release
			close(sendStarted)
			<-releaseSend
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, client.Message{ID: "msg-1", ChatID: "chat-1", UserID: "user-self", Text: "late"})
		}
	}))
	defer server.Close()

	api := client.New(server.URL)
	sessions := client.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	auth := client.NewAuthStore(api, sessions, newTestLogger())
	require.NoError(t, auth.Login(context.Background(), "self@example.com", "password123"))

	chats := client.NewChatStore(api, auth, newTestLogger())
	require.NoError(t, chats.Refresh(context.Background()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Исход отправки не важен для утверждения теста
		_, _ = chats.SendMessage(context.Background(), "chat-1", "late message", nil)
	}()

	// Act: выходим, пока запрос висит
	select {
	case <-sendStarted:
	case <-time.After(5 * time.Second):
		t.Fatal("send never reached the server")
	}
	auth.Logout(context.Background())
	close(releaseSend)
	wg.Wait()

	// Assert
	assert.Equal(t, client.StatusAnonymous, auth.Status())
	assert.Nil(t, auth.CurrentUser())
	restored, err := sessions.Load()
	assert.NoError(t, err)
	assert.Nil(t, restored)
}

package client_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teamhub/client"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollFeed_TicksAndStops(t *testing.T) {
	// Arrange
	feed := client.NewPollFeed(10 * time.Millisecond)

	// Act / Assert: тик приходит в разумное время
	select {
	case change := <-feed.Changes():
		assert.Equal(t, client.ActionRefresh, change.Action)
	case <-time.After(time.Second):
		t.Fatal("no poll tick delivered")
	}

	// Close останавливает доставку: канал закрывается
	require.NoError(t, feed.Close())
	for {
		if _, open := <-feed.Changes(); !open {
			return
		}
	}
}

func TestPollFeed_CloseIsIdempotent(t *testing.T) {
	feed := client.NewPollFeed(time.Minute)
	assert.NoError(t, feed.Close())
	assert.NoError(t, feed.Close())
}

func TestPushFeed_DeliversChanges(t *testing.T) {
	// Arrange: websocket сервер отправляет одно событие
	upgrader := websocket.Upgrader{}
	received := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.URL.Query().Get("token")
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		chatID := "chat-1"
		err = conn.WriteJSON(client.Change{
			Entity: "message",
			Action: "created",
			ID:     "msg-1",
			ChatID: &chatID,
		})
		require.NoError(t, err)

		// Держим соединение, пока клиент не закроет его
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	// Act
	feed, err := client.NewPushFeed(server.URL, "test-token", newTestLogger())
	require.NoError(t, err)
	defer feed.Close()

	// Assert: токен ушел в query string
	assert.Equal(t, "test-token", <-received)

	select {
	case change := <-feed.Changes():
		assert.Equal(t, "message", change.Entity)
		assert.Equal(t, "created", change.Action)
		assert.Equal(t, "msg-1", change.ID)
		require.NotNil(t, change.ChatID)
		assert.Equal(t, "chat-1", *change.ChatID)
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered over websocket")
	}

	// Close завершает подписку, канал закрывается
	require.NoError(t, feed.Close())
	select {
	case _, open := <-feed.Changes():
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("feed channel not closed")
	}
}

func TestPushFeed_CloseUnblocksReaderWithoutConsumer(t *testing.T) {
	// Arrange: сервер шлет событие, которое никто не читает
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		err = conn.WriteJSON(client.Change{Entity: "task", Action: "updated", ID: "task-1"})
		require.NoError(t, err)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	feed, err := client.NewPushFeed(server.URL, "test-token", newTestLogger())
	require.NoError(t, err)

	// Даем читающей горутине заблокироваться на отправке в канал
	time.Sleep(100 * time.Millisecond)

	// Act: подписчик ушел, не выбрав событие
	require.NoError(t, feed.Close())

	// Assert: читающая горутина завершается и закрывает канал
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-feed.Changes():
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("feed reader still blocked after Close")
		}
	}
}

package client

import (
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"teamhub/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Change — событие изменения с сервера
type Change struct {
	Entity string  `json:"entity"`
	Action string  `json:"action"`
	ID     string  `json:"id"`
	ChatID *string `json:"chat_id,omitempty"`
}

// ActionRefresh is a synthetic poll tick: the consumer should re-fetch.
const ActionRefresh = "refresh"

// Feed delivers change events until closed. Closing stops delivery so
// no consumer outlives its view.
type Feed interface {
	Changes() <-chan Change
	Close() error
}

// FeedConfig selects the sync strategy.
type FeedConfig struct {
	// Push enables the websocket subscription; otherwise fixed-interval
	// polling is used.
	Push         bool
	ServerURL    string
	Token        string
	PollInterval time.Duration
}

// NewFeed opens the feed described by the config.
func NewFeed(cfg FeedConfig, log *logger.Logger) (Feed, error) {
	if cfg.Push {
		return NewPushFeed(cfg.ServerURL, cfg.Token, log)
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return NewPollFeed(interval), nil
}

// PollFeed выдает тик с фиксированным интервалом; потребитель в ответ
// перечитывает нужные коллекции.
type PollFeed struct {
	changes chan Change
	done    chan struct{}
	once    sync.Once
}

func NewPollFeed(interval time.Duration) *PollFeed {
	f := &PollFeed{
		changes: make(chan Change),
		done:    make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(f.changes)
		for {
			select {
			case <-f.done:
				return
			case <-ticker.C:
				select {
				case f.changes <- Change{Action: ActionRefresh}:
				case <-f.done:
					return
				}
			}
		}
	}()
	return f
}

func (f *PollFeed) Changes() <-chan Change { return f.changes }

func (f *PollFeed) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}

// PushFeed подписывается на /ws и транслирует серверные события
type PushFeed struct {
	conn    *websocket.Conn
	log     *logger.Logger
	changes chan Change
	done    chan struct{}
	once    sync.Once
}

// NewPushFeed dials the server's websocket endpoint. The token rides in
// the query string, matching the server's expectations.
func NewPushFeed(serverURL, token string, log *logger.Logger) (*PushFeed, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, &TransportError{Op: "dial feed", Err: err}
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, &TransportError{Op: "dial feed", Err: err}
	}

	f := &PushFeed{
		conn:    conn,
		log:     log,
		changes: make(chan Change),
		done:    make(chan struct{}),
	}
	go f.readLoop()
	return f, nil
}

func (f *PushFeed) readLoop() {
	defer close(f.changes)
	for {
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				f.log.Warn("feed connection closed", zap.Error(err))
			}
			return
		}

		var change Change
		if err := json.Unmarshal(data, &change); err != nil {
			f.log.Warn("malformed change event", zap.Error(err))
			continue
		}
		select {
		case f.changes <- change:
		case <-f.done:
			return
		}
	}
}

func (f *PushFeed) Changes() <-chan Change { return f.changes }

// Close performs the websocket closing handshake and drops the
// connection. Safe to call more than once.
func (f *PushFeed) Close() error {
	var err error
	f.once.Do(func() {
		close(f.done)
		deadline := time.Now().Add(time.Second)
		_ = f.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline,
		)
		err = f.conn.Close()
	})
	return err
}

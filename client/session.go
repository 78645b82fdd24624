package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Session is the state persisted across restarts: the bearer token and
// the profile it was issued for.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SessionStore reads and writes the session file. The zero value is not
// usable, construct with NewSessionStore.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath places the session under the user config dir,
// falling back to the working directory when it cannot be resolved.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".teamhub_session.json"
	}
	return filepath.Join(dir, "teamhub", "session.json")
}

// Load returns nil, nil when no session has been persisted.
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		// Поврежденный файл сессии равнозначен ее отсутствию
		return nil, nil
	}
	if session.Token == "" {
		return nil, nil
	}
	return &session, nil
}

func (s *SessionStore) Save(session *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the session file. A missing file is not an error.
func (s *SessionStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

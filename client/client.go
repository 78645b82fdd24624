// Package client is the Go client for the TeamHub API: a thin typed
// transport plus in-memory stores for tasks, chats and the session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Client issues typed requests against a TeamHub server.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the bearer token used for authorized calls.
// An empty string clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: method + " " + path, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp, method+" "+path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransportError{Op: method + " " + path, Err: err}
		}
	}
	return nil
}

// mapError translates HTTP statuses into the client error taxonomy.
func (c *Client) mapError(resp *http.Response, op string) error {
	var body apiError
	_ = json.NewDecoder(resp.Body).Decode(&body)
	message := body.Error
	if message == "" {
		message = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return &ValidationError{Message: message}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Message: message}
	case http.StatusNotFound:
		return &NotFoundError{Message: message}
	case http.StatusConflict:
		return &ConflictError{Message: message}
	default:
		return &TransportError{Op: op, Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, message)}
	}
}

// AuthResult is the login/register payload.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, name, email, password, department string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/register", map[string]string{
		"name":       name,
		"email":      email,
		"password":   password,
		"department": department,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, "/users/"+id, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, http.MethodGet, "/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, id string) (*Event, error) {
	var event Event
	if err := c.do(ctx, http.MethodGet, "/events/"+id, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) CreateEvent(ctx context.Context, input CreateEventInput) (*Event, error) {
	var event Event
	if err := c.do(ctx, http.MethodPost, "/events", input, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id string, input CreateEventInput) (*Event, error) {
	var event Event
	if err := c.do(ctx, http.MethodPut, "/events/"+id, input, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+id, nil, nil)
}

func (c *Client) ListColumns(ctx context.Context) ([]Column, error) {
	var columns []Column
	if err := c.do(ctx, http.MethodGet, "/columns", nil, &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

func (c *Client) ListColumnsByEvent(ctx context.Context, eventID string) ([]Column, error) {
	var columns []Column
	if err := c.do(ctx, http.MethodGet, "/events/"+eventID+"/columns", nil, &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

func (c *Client) CreateColumn(ctx context.Context, input CreateColumnInput) (*Column, error) {
	var column Column
	if err := c.do(ctx, http.MethodPost, "/columns", input, &column); err != nil {
		return nil, err
	}
	return &column, nil
}

func (c *Client) UpdateColumn(ctx context.Context, id string, input CreateColumnInput) (*Column, error) {
	var column Column
	if err := c.do(ctx, http.MethodPut, "/columns/"+id, input, &column); err != nil {
		return nil, err
	}
	return &column, nil
}

func (c *Client) DeleteColumn(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/columns/"+id, nil, nil)
}

// ReorderColumns persists positions for the event's columns.
// positions maps column id to its new display position.
func (c *Client) ReorderColumns(ctx context.Context, eventID string, positions map[string]int) error {
	type item struct {
		ID       string `json:"id"`
		Position int    `json:"position"`
	}
	payload := struct {
		Columns []item `json:"columns"`
	}{}
	for id, position := range positions {
		payload.Columns = append(payload.Columns, item{ID: id, Position: position})
	}
	return c.do(ctx, http.MethodPost, "/events/"+eventID+"/columns/reorder", payload, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+id, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ListTasksByColumn(ctx context.Context, columnID string) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/columns/"+columnID+"/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks", input, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id, input, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil)
}

// MoveTask reassigns the task's column and event in one call.
func (c *Client) MoveTask(ctx context.Context, id, columnID, eventID string) (*Task, error) {
	var task Task
	err := c.do(ctx, http.MethodPost, "/tasks/"+id+"/move", map[string]string{
		"column_id": columnID,
		"event_id":  eventID,
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ListChats(ctx context.Context) ([]Chat, error) {
	var chats []Chat
	if err := c.do(ctx, http.MethodGet, "/chats", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (c *Client) GetChat(ctx context.Context, id string) (*Chat, error) {
	var chat Chat
	if err := c.do(ctx, http.MethodGet, "/chats/"+id, nil, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (c *Client) CreateChat(ctx context.Context, chatType, name string, participantIDs []string) (*Chat, error) {
	var chat Chat
	err := c.do(ctx, http.MethodPost, "/chats", map[string]interface{}{
		"type":            chatType,
		"name":            name,
		"participant_ids": participantIDs,
	}, &chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (c *Client) ListMessages(ctx context.Context, chatID string) ([]Message, error) {
	var messages []Message
	if err := c.do(ctx, http.MethodGet, "/chats/"+chatID+"/messages", nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID, text string, replyTo *string) (*Message, error) {
	var message Message
	err := c.do(ctx, http.MethodPost, "/chats/"+chatID+"/messages", map[string]interface{}{
		"text":     text,
		"reply_to": replyTo,
	}, &message)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID string) error {
	return c.do(ctx, http.MethodDelete, "/chats/"+chatID+"/messages/"+messageID, nil, nil)
}

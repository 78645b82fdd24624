package client

import "time"

// User зеркалирует ответ сервера /users
type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Avatar         string `json:"avatar,omitempty"`
	Role           string `json:"role"`
	Department     string `json:"department,omitempty"`
	ActiveTasks    int    `json:"active_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
	JoinedDate     string `json:"joined_date"`
}

type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
	CreatedAt   string `json:"created_at"`
}

type Column struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	EventID  string `json:"event_id"`
	Position int    `json:"position"`
	Color    string `json:"color,omitempty"`
}

type Task struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	EventID     string  `json:"event_id"`
	ColumnID    string  `json:"column_id"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status,omitempty"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	DueDate     *string `json:"due_date,omitempty"`
}

type Chat struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Name            string   `json:"name,omitempty"`
	CreatedBy       string   `json:"created_by"`
	ParticipantIDs  []string `json:"participant_ids"`
	LastMessage     string   `json:"last_message,omitempty"`
	LastMessageTime *string  `json:"last_message_time,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

type Message struct {
	ID        string  `json:"id"`
	ChatID    string  `json:"chat_id"`
	UserID    string  `json:"user_id"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
	ReplyTo   *string `json:"reply_to,omitempty"`
}

// CreateTaskInput описывает поля новой задачи
type CreateTaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	EventID     string     `json:"event_id"`
	ColumnID    string     `json:"column_id"`
	Priority    string     `json:"priority,omitempty"`
	Status      string     `json:"status,omitempty"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskInput содержит только изменяемые поля; nil — поле не трогать
type UpdateTaskInput struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Status      *string    `json:"status,omitempty"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type CreateEventInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Position    *int   `json:"position,omitempty"`
}

type CreateColumnInput struct {
	Title    string `json:"title"`
	EventID  string `json:"event_id"`
	Position *int   `json:"position,omitempty"`
	Color    string `json:"color,omitempty"`
}

type UpdateUserInput struct {
	Name       *string `json:"name,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
	Role       *string `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
	Password   *string `json:"password,omitempty"`
}

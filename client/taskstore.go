package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"teamhub/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Виды локальных уведомлений о жизненном цикле задачи
const (
	NotificationTaskCreated   = "task_created"
	NotificationTaskUpdated   = "task_updated"
	NotificationTaskMoved     = "task_moved"
	NotificationTaskCompleted = "task_completed"
	NotificationError         = "error"
)

// Notification — клиентская запись о событии, не хранится на сервере
type Notification struct {
	ID        string
	Kind      string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// doneColumnTitle marks the column whose arrivals count as completion.
const doneColumnTitle = "Done"

// TaskStore владеет клиентским кэшем задач, событий и колонок.
// Кэш меняется только после успешного ответа сервера.
type TaskStore struct {
	client *Client
	log    *logger.Logger

	mu            sync.RWMutex
	tasks         map[string]Task
	events        map[string]Event
	columns       map[string]Column
	notifications []Notification
}

func NewTaskStore(client *Client, log *logger.Logger) *TaskStore {
	return &TaskStore{
		client:  client,
		log:     log,
		tasks:   make(map[string]Task),
		events:  make(map[string]Event),
		columns: make(map[string]Column),
	}
}

// Refresh перечитывает все три коллекции с сервера
func (s *TaskStore) Refresh(ctx context.Context) error {
	events, err := s.client.ListEvents(ctx)
	if err != nil {
		return err
	}
	columns, err := s.client.ListColumns(ctx)
	if err != nil {
		return err
	}
	tasks, err := s.client.ListTasks(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]Event, len(events))
	for _, e := range events {
		s.events[e.ID] = e
	}
	s.columns = make(map[string]Column, len(columns))
	for _, c := range columns {
		s.columns[c.ID] = c
	}
	s.tasks = make(map[string]Task, len(tasks))
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return nil
}

// Tasks returns a snapshot of the cached tasks.
func (s *TaskStore) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	return out
}

func (s *TaskStore) Task(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

func (s *TaskStore) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	return out
}

func (s *TaskStore) Columns() []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Column, 0, len(s.columns))
	for _, c := range s.columns {
		out = append(out, c)
	}
	return out
}

func (s *TaskStore) Column(id string) (Column, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.columns[id]
	return c, ok
}

// TasksByColumn returns cached tasks referencing the column.
func (s *TaskStore) TasksByColumn(columnID string) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Task
	for _, t := range s.tasks {
		if t.ColumnID == columnID {
			out = append(out, t)
		}
	}
	return out
}

// CreateTask создает задачу. Пустой заголовок отклоняется до
// обращения к серверу.
func (s *TaskStore) CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		err := &ValidationError{Field: "title", Message: "title cannot be empty"}
		s.notifyError("Failed to create task: " + err.Error())
		return nil, err
	}

	task, err := s.client.CreateTask(ctx, input)
	if err != nil {
		s.log.Error("create task failed", zap.Error(err))
		s.notifyError("Failed to create task")
		return nil, err
	}

	s.mu.Lock()
	s.tasks[task.ID] = *task
	s.mu.Unlock()

	s.notify(NotificationTaskCreated, fmt.Sprintf("Task %q created", task.Title))
	return task, nil
}

// UpdateTask применяет только переданные поля
func (s *TaskStore) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*Task, error) {
	task, err := s.client.UpdateTask(ctx, id, input)
	if err != nil {
		s.log.Error("update task failed", zap.String("task_id", id), zap.Error(err))
		s.notifyError("Failed to update task")
		return nil, err
	}

	s.mu.Lock()
	s.tasks[task.ID] = *task
	s.mu.Unlock()

	s.notify(NotificationTaskUpdated, fmt.Sprintf("Task %q updated", task.Title))
	return task, nil
}

// DeleteTask идемпотентен: задача, уже удаленная на сервере,
// считается успешно удаленной.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) error {
	err := s.client.DeleteTask(ctx, id)
	if err != nil {
		if _, ok := err.(*NotFoundError); !ok {
			s.log.Error("delete task failed", zap.String("task_id", id), zap.Error(err))
			s.notifyError("Failed to delete task")
			return err
		}
	}

	s.mu.Lock()
	delete(s.tasks, id)
	s.mu.Unlock()
	return nil
}

// MoveTask переносит задачу: ссылки на колонку и событие всегда
// обновляются вместе. Перенос в колонку "Done" дополнительно
// отмечается уведомлением о завершении.
func (s *TaskStore) MoveTask(ctx context.Context, taskID, columnID, eventID string) error {
	task, err := s.client.MoveTask(ctx, taskID, columnID, eventID)
	if err != nil {
		s.log.Error("move task failed",
			zap.String("task_id", taskID),
			zap.String("column_id", columnID),
			zap.Error(err))
		s.notifyError("Failed to move task")
		return err
	}

	s.mu.Lock()
	s.tasks[task.ID] = *task
	column, knownColumn := s.columns[columnID]
	s.mu.Unlock()

	columnTitle := columnID
	if knownColumn {
		columnTitle = column.Title
	}
	s.notify(NotificationTaskMoved, fmt.Sprintf("Task %q moved to %s", task.Title, columnTitle))
	if knownColumn && column.Title == doneColumnTitle {
		s.notify(NotificationTaskCompleted, fmt.Sprintf("Task %q completed", task.Title))
	}
	return nil
}

func (s *TaskStore) CreateEvent(ctx context.Context, input CreateEventInput) (*Event, error) {
	event, err := s.client.CreateEvent(ctx, input)
	if err != nil {
		s.log.Error("create event failed", zap.Error(err))
		s.notifyError("Failed to create event")
		return nil, err
	}

	s.mu.Lock()
	s.events[event.ID] = *event
	s.mu.Unlock()
	return event, nil
}

// DeleteEvent удаляет событие; сервер каскадно убирает его колонки и
// задачи, кэш чистится так же.
func (s *TaskStore) DeleteEvent(ctx context.Context, id string) error {
	if err := s.client.DeleteEvent(ctx, id); err != nil {
		s.log.Error("delete event failed", zap.String("event_id", id), zap.Error(err))
		s.notifyError("Failed to delete event")
		return err
	}

	s.mu.Lock()
	delete(s.events, id)
	for columnID, column := range s.columns {
		if column.EventID == id {
			delete(s.columns, columnID)
		}
	}
	for taskID, task := range s.tasks {
		if task.EventID == id {
			delete(s.tasks, taskID)
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *TaskStore) CreateColumn(ctx context.Context, input CreateColumnInput) (*Column, error) {
	column, err := s.client.CreateColumn(ctx, input)
	if err != nil {
		s.log.Error("create column failed", zap.Error(err))
		s.notifyError("Failed to create column")
		return nil, err
	}

	s.mu.Lock()
	s.columns[column.ID] = *column
	s.mu.Unlock()
	return column, nil
}

// DeleteColumn отклоняется, пока в колонке остаются задачи
func (s *TaskStore) DeleteColumn(ctx context.Context, id string) error {
	if tasks := s.TasksByColumn(id); len(tasks) > 0 {
		err := &ConflictError{Message: fmt.Sprintf("column still has %d tasks", len(tasks))}
		s.notifyError("Cannot delete a column that still has tasks")
		return err
	}

	if err := s.client.DeleteColumn(ctx, id); err != nil {
		s.log.Error("delete column failed", zap.String("column_id", id), zap.Error(err))
		if _, ok := err.(*ConflictError); ok {
			s.notifyError("Cannot delete a column that still has tasks")
		} else {
			s.notifyError("Failed to delete column")
		}
		return err
	}

	s.mu.Lock()
	delete(s.columns, id)
	s.mu.Unlock()
	return nil
}

// Notifications returns a snapshot, newest last.
func (s *TaskStore) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *TaskStore) MarkNotificationRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return true
		}
	}
	return false
}

func (s *TaskStore) ClearNotifications() {
	s.mu.Lock()
	s.notifications = nil
	s.mu.Unlock()
}

func (s *TaskStore) notify(kind, message string) {
	s.mu.Lock()
	s.notifications = append(s.notifications, Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	})
	s.mu.Unlock()
}

func (s *TaskStore) notifyError(message string) {
	s.notify(NotificationError, message)
}

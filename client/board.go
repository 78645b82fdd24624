package client

import (
	"context"
	"sync"
)

// DragState описывает состояние жеста перетаскивания
type DragState int

const (
	DragIdle DragState = iota
	DragActive
)

// Board переводит жест drag-and-drop в единственный вызов MoveTask.
// Во время перетаскивания сетевых запросов нет: обращение к серверу
// происходит только после отпускания на валидной колонке.
type Board struct {
	store *TaskStore

	mu      sync.Mutex
	state   DragState
	dragged string
}

func NewBoard(store *TaskStore) *Board {
	return &Board{store: store}
}

func (b *Board) State() DragState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// StartDrag фиксирует перетаскиваемую задачу
func (b *Board) StartDrag(taskID string) error {
	if _, ok := b.store.Task(taskID); !ok {
		return &NotFoundError{Entity: "task", ID: taskID}
	}

	b.mu.Lock()
	b.state = DragActive
	b.dragged = taskID
	b.mu.Unlock()
	return nil
}

// DragOver сообщает, стоит ли подсвечивать колонку. Состояние не меняется.
func (b *Board) DragOver(columnID string) bool {
	_, ok := b.store.Column(columnID)
	return ok
}

// Cancel возвращает доску в исходное состояние без мутаций
func (b *Board) Cancel() {
	b.mu.Lock()
	b.state = DragIdle
	b.dragged = ""
	b.mu.Unlock()
}

// Drop завершает жест. Отпускание на неизвестной колонке или на
// текущей колонке задачи равнозначно отмене. Валидное отпускание
// выполняет ровно один MoveTask с id колонки и id ее события.
func (b *Board) Drop(ctx context.Context, columnID string) (bool, error) {
	b.mu.Lock()
	if b.state != DragActive {
		b.mu.Unlock()
		return false, nil
	}
	taskID := b.dragged
	b.state = DragIdle
	b.dragged = ""
	b.mu.Unlock()

	task, ok := b.store.Task(taskID)
	if !ok {
		return false, nil
	}
	column, ok := b.store.Column(columnID)
	if !ok {
		return false, nil
	}
	if column.ID == task.ColumnID {
		return false, nil
	}

	if err := b.store.MoveTask(ctx, taskID, column.ID, column.EventID); err != nil {
		return false, err
	}
	return true, nil
}

package handler

import (
	"net/http"
	"time"

	"teamhub/internal/middleware"
	"teamhub/internal/model"
	"teamhub/internal/realtime"
	"teamhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskRepo   *repository.TaskRepository
	columnRepo *repository.ColumnRepository
	eventRepo  *repository.EventRepository
	userRepo   *repository.UserRepository
	hub        *realtime.Hub
}

func NewTaskHandler(
	taskRepo *repository.TaskRepository,
	columnRepo *repository.ColumnRepository,
	eventRepo *repository.EventRepository,
	userRepo *repository.UserRepository,
	hub *realtime.Hub,
) *TaskHandler {
	return &TaskHandler{
		taskRepo:   taskRepo,
		columnRepo: columnRepo,
		eventRepo:  eventRepo,
		userRepo:   userRepo,
		hub:        hub,
	}
}

// TaskRequest представляет запрос на создание задачи
type TaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	EventID     string     `json:"event_id" binding:"required,uuid"`
	ColumnID    string     `json:"column_id" binding:"required,uuid"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	AssignedTo  *string    `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// TaskUpdateRequest представляет частичное обновление задачи:
// меняются только переданные поля
type TaskUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	AssignedTo  *string    `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// TaskMoveRequest представляет запрос на перемещение задачи между колонками
type TaskMoveRequest struct {
	ColumnID string `json:"column_id" binding:"required,uuid"`
	EventID  string `json:"event_id" binding:"required,uuid"`
}

// TaskResponse представляет ответ с данными задачи
type TaskResponse struct {
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

func toTaskResponse(task *model.Task) TaskResponse {
	response := TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		EventID:     task.EventID.String(),
		ColumnID:    task.ColumnID.String(),
		Priority:    task.Priority,
		Status:      task.Status,
		CreatedBy:   task.CreatedBy.String(),
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
	if task.AssignedTo != nil {
		assignedTo := task.AssignedTo.String()
		response.AssignedTo = &assignedTo
	}
	if task.DueDate != nil {
		dueDate := task.DueDate.Format(time.RFC3339)
		response.DueDate = &dueDate
	}
	return response
}

// Неизвестный приоритет приводится к medium, как и отсутствующий
func normalizePriority(priority string) string {
	switch priority {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
		return priority
	default:
		return model.PriorityMedium
	}
}

func normalizeStatus(status string) string {
	switch status {
	case model.StatusTodo, model.StatusInProgress, model.StatusDone:
		return status
	default:
		return ""
	}
}

// Create создает новую задачу
func (h *TaskHandler) Create(c *gin.Context) {
	// Получаем ID текущего пользователя из контекста
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

	// Парсим запрос
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}

	columnID, err := uuid.Parse(req.ColumnID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
		return
	}

	// Проверяем существование события и колонки
	event, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	column, err := h.columnRepo.GetByID(c.Request.Context(), columnID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
		return
	}
	if column == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		return
	}

	// Колонка обязана принадлежать указанному событию
	if column.EventID != eventID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Column does not belong to the specified event"})
		return
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		EventID:     eventID,
		ColumnID:    columnID,
		Priority:    normalizePriority(req.Priority),
		Status:      normalizeStatus(req.Status),
		CreatedBy:   authenticatedUserID,
		DueDate:     req.DueDate,
	}

	// Проверяем существование назначенного пользователя, если указан
	if req.AssignedTo != nil {
		assigneeID, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
			return
		}
		assignee, err := h.userRepo.GetByID(c.Request.Context(), assigneeID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
			return
		}
		if assignee == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		task.AssignedTo = &assigneeID
	}

	// Сохраняем задачу в БД
	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	// Обновляем счетчики задач исполнителя
	if task.AssignedTo != nil {
		_ = h.userRepo.RecalculateTaskCounters(c.Request.Context(), *task.AssignedTo)
	}

	h.hub.Publish(realtime.Change{Entity: "task", Action: realtime.ActionCreated, ID: task.ID}, nil)
	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// GetAll возвращает все задачи
func (h *TaskHandler) GetAll(c *gin.Context) {
	tasks, err := h.taskRepo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = toTaskResponse(&tasks[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByID получает задачу по ID
func (h *TaskHandler) GetByID(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if err == repository.ErrTaskNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// GetByColumnID получает все задачи в колонке
func (h *TaskHandler) GetByColumnID(c *gin.Context) {
	columnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
		return
	}

	column, err := h.columnRepo.GetByID(c.Request.Context(), columnID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
		return
	}
	if column == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		return
	}

	tasks, err := h.taskRepo.GetByColumnID(c.Request.Context(), columnID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = toTaskResponse(&tasks[i])
	}

	c.JSON(http.StatusOK, response)
}

// Update обновляет переданные поля задачи
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if err == repository.ErrTaskNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	previousAssignee := task.AssignedTo

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = normalizePriority(*req.Priority)
	}
	if req.Status != nil {
		task.Status = normalizeStatus(*req.Status)
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.AssignedTo != nil {
		assigneeID, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
			return
		}
		assignee, err := h.userRepo.GetByID(c.Request.Context(), assigneeID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
			return
		}
		if assignee == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		task.AssignedTo = &assigneeID
	}

	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	// Пересчитываем счетчики прежнего и нового исполнителя
	if previousAssignee != nil {
		_ = h.userRepo.RecalculateTaskCounters(c.Request.Context(), *previousAssignee)
	}
	if task.AssignedTo != nil && (previousAssignee == nil || *task.AssignedTo != *previousAssignee) {
		_ = h.userRepo.RecalculateTaskCounters(c.Request.Context(), *task.AssignedTo)
	}

	h.hub.Publish(realtime.Change{Entity: "task", Action: realtime.ActionUpdated, ID: task.ID}, nil)
	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete удаляет задачу
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if err == repository.ErrTaskNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), taskID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	if task.AssignedTo != nil {
		_ = h.userRepo.RecalculateTaskCounters(c.Request.Context(), *task.AssignedTo)
	}

	h.hub.Publish(realtime.Change{Entity: "task", Action: realtime.ActionDeleted, ID: taskID}, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Move перемещает задачу в другую колонку. Ссылки на колонку и событие
// всегда обновляются вместе.
func (h *TaskHandler) Move(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	var req TaskMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	columnID, err := uuid.Parse(req.ColumnID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}

	if err := h.taskRepo.MoveTask(c.Request.Context(), taskID, columnID, eventID); err != nil {
		switch err {
		case repository.ErrTaskNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		case repository.ErrColumnEventMismatch:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Column does not belong to the specified event"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move task"})
		}
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	h.hub.Publish(realtime.Change{Entity: "task", Action: realtime.ActionMoved, ID: taskID}, nil)
	c.JSON(http.StatusOK, toTaskResponse(task))
}

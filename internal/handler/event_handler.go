package handler

import (
	"net/http"
	"time"

	"teamhub/internal/model"
	"teamhub/internal/realtime"
	"teamhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EventHandler struct {
	eventRepo *repository.EventRepository
	hub       *realtime.Hub
}

func NewEventHandler(eventRepo *repository.EventRepository, hub *realtime.Hub) *EventHandler {
	return &EventHandler{
		eventRepo: eventRepo,
		hub:       hub,
	}
}

type EventRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Position    *int   `json:"position"`
}

type EventResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
	CreatedAt   string `json:"created_at"`
}

func toEventResponse(event *model.Event) EventResponse {
	return EventResponse{
		ID:          event.ID.String(),
		Title:       event.Title,
		Description: event.Description,
		Position:    event.Position,
		CreatedAt:   event.CreatedAt.Format(time.RFC3339),
	}
}

// Create creates a new event grouping
func (h *EventHandler) Create(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		// Append to the end when no position is given
		max, err := h.eventRepo.GetMaxPosition(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to determine position"})
			return
		}
		position = max + 1
	}

	event := &model.Event{
		Title:       req.Title,
		Description: req.Description,
		Position:    position,
	}

	if err := h.eventRepo.Create(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	h.hub.Publish(realtime.Change{Entity: "event", Action: realtime.ActionCreated, ID: event.ID}, nil)
	c.JSON(http.StatusCreated, toEventResponse(event))
}

// GetAll lists events in display order
func (h *EventHandler) GetAll(c *gin.Context) {
	events, err := h.eventRepo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}

	response := make([]EventResponse, len(events))
	for i := range events {
		response[i] = toEventResponse(&events[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByID returns a single event
func (h *EventHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}

	event, err := h.eventRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, toEventResponse(event))
}

// Update modifies an event's title, description or position
func (h *EventHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}

	event, err := h.eventRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	event.Title = req.Title
	event.Description = req.Description
	if req.Position != nil {
		event.Position = *req.Position
	}

	if err := h.eventRepo.Update(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	h.hub.Publish(realtime.Change{Entity: "event", Action: realtime.ActionUpdated, ID: event.ID}, nil)
	c.JSON(http.StatusOK, toEventResponse(event))
}

// Delete removes an event and everything under it (columns and tasks)
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}

	if err := h.eventRepo.Delete(c.Request.Context(), id); err != nil {
		if err == repository.ErrEventNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		}
		return
	}

	h.hub.Publish(realtime.Change{Entity: "event", Action: realtime.ActionDeleted, ID: id}, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

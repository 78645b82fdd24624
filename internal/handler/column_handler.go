package handler

import (
	"net/http"

	"teamhub/internal/model"
	"teamhub/internal/realtime"
	"teamhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ColumnHandler struct {
	columnRepo *repository.ColumnRepository
	eventRepo  *repository.EventRepository
	hub        *realtime.Hub
}

func NewColumnHandler(
	columnRepo *repository.ColumnRepository,
	eventRepo *repository.EventRepository,
	hub *realtime.Hub,
) *ColumnHandler {
	return &ColumnHandler{
		columnRepo: columnRepo,
		eventRepo:  eventRepo,
		hub:        hub,
	}
}

type ColumnRequest struct {
	Title    string `json:"title" binding:"required"`
	EventID  string `json:"event_id" binding:"required,uuid"`
	Position *int   `json:"position"`
	Color    string `json:"color"`
}

type ColumnResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	EventID  string `json:"event_id"`
	Position int    `json:"position"`
	Color    string `json:"color,omitempty"`
}

func toColumnResponse(column *model.Column) ColumnResponse {
	return ColumnResponse{
		ID:       column.ID.String(),
		Title:    column.Title,
		EventID:  column.EventID.String(),
		Position: column.Position,
		Color:    column.Color,
	}
}

// Create creates a new column within an event
func (h *ColumnHandler) Create(c *gin.Context) {
	var req ColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}

	event, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		max, err := h.columnRepo.GetMaxPosition(c.Request.Context(), eventID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to determine position"})
			return
		}
		position = max + 1
	}

	column := &model.Column{
		Title:    req.Title,
		EventID:  eventID,
		Position: position,
		Color:    req.Color,
	}

	if err := h.columnRepo.Create(c.Request.Context(), column); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create column"})
		return
	}

	h.hub.Publish(realtime.Change{Entity: "column", Action: realtime.ActionCreated, ID: column.ID}, nil)
	c.JSON(http.StatusCreated, toColumnResponse(column))
}

// GetAll lists every column
func (h *ColumnHandler) GetAll(c *gin.Context) {
	columns, err := h.columnRepo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve columns"})
		return
	}

	response := make([]ColumnResponse, len(columns))
	for i := range columns {
		response[i] = toColumnResponse(&columns[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByEventID lists the columns of one event in display order
func (h *ColumnHandler) GetByEventID(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}

	columns, err := h.columnRepo.GetByEventID(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve columns"})
		return
	}

	response := make([]ColumnResponse, len(columns))
	for i := range columns {
		response[i] = toColumnResponse(&columns[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByID returns a single column
func (h *ColumnHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
		return
	}

	column, err := h.columnRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
		return
	}
	if column == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		return
	}

	c.JSON(http.StatusOK, toColumnResponse(column))
}

// Update modifies a column's title, position, color or owning event
func (h *ColumnHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
		return
	}

	column, err := h.columnRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
		return
	}
	if column == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		return
	}

	var req ColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	column.Title = req.Title
	column.Color = req.Color
	if req.Position != nil {
		column.Position = *req.Position
	}

	if req.EventID != column.EventID.String() {
		newEventID, err := uuid.Parse(req.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
			return
		}
		event, err := h.eventRepo.GetByID(c.Request.Context(), newEventID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
			return
		}
		if event == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		column.EventID = newEventID
	}

	if err := h.columnRepo.Update(c.Request.Context(), column); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update column"})
		return
	}

	h.hub.Publish(realtime.Change{Entity: "column", Action: realtime.ActionUpdated, ID: column.ID}, nil)
	c.JSON(http.StatusOK, toColumnResponse(column))
}

// Delete removes a column. Columns that still contain tasks are protected:
// the request fails with 409 and the column stays.
func (h *ColumnHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
		return
	}

	column, err := h.columnRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve column"})
		return
	}
	if column == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Column not found"})
		return
	}

	if err := h.columnRepo.Delete(c.Request.Context(), id); err != nil {
		if err == repository.ErrColumnNotEmpty {
			c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete a column that still has tasks"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete column"})
		}
		return
	}

	h.hub.Publish(realtime.Change{Entity: "column", Action: realtime.ActionDeleted, ID: id}, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Column deleted successfully"})
}

// ReorderRequest carries the new display order of an event's columns
type ReorderRequest struct {
	Columns []struct {
		ID       string `json:"id" binding:"required,uuid"`
		Position int    `json:"position"`
	} `json:"columns" binding:"required"`
}

// ReorderColumns updates column positions in one transaction
func (h *ColumnHandler) ReorderColumns(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID format"})
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	columns := make([]model.Column, len(req.Columns))
	for i, item := range req.Columns {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
			return
		}
		columns[i] = model.Column{ID: id, Position: item.Position}
	}

	if err := h.columnRepo.ReorderColumns(c.Request.Context(), columns); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder columns"})
		return
	}

	h.hub.Publish(realtime.Change{Entity: "column", Action: realtime.ActionUpdated, ID: eventID}, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Columns reordered successfully"})
}

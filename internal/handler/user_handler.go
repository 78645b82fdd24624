package handler

import (
	"net/http"
	"strings"
	"time"

	"teamhub/internal/middleware"
	"teamhub/internal/model"
	"teamhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	repo *repository.UserRepository
}

func NewUserHandler(repo *repository.UserRepository) *UserHandler {
	return &UserHandler{repo: repo}
}

// UserResponse represents a user profile in API responses
type UserResponse struct {
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

type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Avatar     *string `json:"avatar"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Password   *string `json:"password"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:             user.ID.String(),
		Name:           user.Name,
		Email:          user.Email,
		Avatar:         avatarOrDefault(user),
		Role:           user.Role,
		Department:     user.Department,
		ActiveTasks:    user.ActiveTasks,
		CompletedTasks: user.CompletedTasks,
		JoinedDate:     user.CreatedAt.Format(time.RFC3339),
	}
}

func avatarOrDefault(user *model.User) string {
	if user.Avatar != "" {
		return user.Avatar
	}
	if user.Name == "" {
		return ""
	}
	return "https://ui-avatars.com/api/?name=" + strings.ReplaceAll(user.Name, " ", "%20") + "&background=0D8ABC&color=fff"
}

// GetAll returns the employee directory
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	response := make([]UserResponse, len(users))
	for i := range users {
		response[i] = toUserResponse(&users[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByID returns a single user profile
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// Update applies a partial profile update. Only the fields present in the
// request body change.
func (h *UserHandler) Update(c *gin.Context) {
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

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	// Users can only edit their own profile
	if id != authenticatedUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Hash error"})
			return
		}
		user.HashedPassword = string(hash)
	}

	if err := h.repo.Update(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

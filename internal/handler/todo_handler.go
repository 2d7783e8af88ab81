package handler

import (
	"net/http"
	"strconv"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TodoHandler struct {
	service service.TodoServiceInterface
}

func NewTodoHandler(todoService service.TodoServiceInterface) *TodoHandler {
	return &TodoHandler{service: todoService}
}

type CreateTodoRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	AssigneeID  *string `json:"assignee_id"`
}

type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	AssigneeID  *string `json:"assignee_id"`
}

func parseAssignee(raw *string) (*uuid.UUID, bool) {
	if raw == nil {
		return nil, true
	}
	parsed, err := uuid.Parse(*raw)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

func (h *TodoHandler) List(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("board_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	cursor := c.Query("cursor")

	page, err := h.service.List(c.Request.Context(), userID, tenantID, boardID, cursor, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TodoHandler) Create(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("board_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assigneeID, ok := parseAssignee(req.AssigneeID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
		return
	}

	todo, err := h.service.Create(c.Request.Context(), userID, tenantID, boardID, service.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssigneeID:  assigneeID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) GetByID(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	todoID, err := uuid.Parse(c.Param("todo_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid todo ID format"})
		return
	}

	todo, err := h.service.Get(c.Request.Context(), userID, tenantID, todoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) Update(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	todoID, err := uuid.Parse(c.Param("todo_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid todo ID format"})
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assigneeID, ok := parseAssignee(req.AssigneeID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
		return
	}

	todo, err := h.service.Update(c.Request.Context(), userID, tenantID, todoID, service.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssigneeID:  assigneeID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	todoID, err := uuid.Parse(c.Param("todo_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid todo ID format"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, tenantID, todoID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}

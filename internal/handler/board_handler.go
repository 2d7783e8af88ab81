package handler

import (
	"net/http"
	"strconv"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BoardHandler struct {
	service service.BoardServiceInterface
}

func NewBoardHandler(boardService service.BoardServiceInterface) *BoardHandler {
	return &BoardHandler{service: boardService}
}

type CreateBoardRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateBoardRequest struct {
	Name *string `json:"name"`
}

// List returns one page of the tenant's boards.
func (h *BoardHandler) List(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	cursor := c.Query("cursor")

	page, err := h.service.List(c.Request.Context(), userID, tenantID, cursor, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BoardHandler) Create(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board, err := h.service.Create(c.Request.Context(), userID, tenantID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

func (h *BoardHandler) GetByID(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("board_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	board, err := h.service.Get(c.Request.Context(), userID, tenantID, boardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *BoardHandler) Update(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("board_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board, err := h.service.Update(c.Request.Context(), userID, tenantID, boardID, service.UpdateBoardInput{Name: req.Name})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *BoardHandler) Delete(c *gin.Context) {
	userID, tenantID, ok := principal(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("board_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, tenantID, boardID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Board deleted successfully"})
}
